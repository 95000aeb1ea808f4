package space

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Builder is an Elem which can construct new elements of its own type
// from raw values. Build is always called on the zero value of E, so
// implementations must not read their receiver. Element types should
// therefore be value types.
type Builder[E any] interface {
	Elem
	Build(s Space, discrete []int, continuous []float64) (E, error)
}

// TryBuild constructs an element of type E in space s from its discrete
// and continuous values. The number of values must match the number of
// dimensions in s exactly, otherwise an error wrapping
// ErrDimensionMismatch is returned and Build is never called.
func TryBuild[E Builder[E]](s Space, discrete []int,
	continuous []float64) (E, error) {
	var zero E

	sizes, bounds := DiscreteDims(s), ContinuousDims(s)
	if len(discrete) != len(sizes) {
		return zero, fmt.Errorf("tryBuild: expected %v discrete values, "+
			"got %v: %w", len(sizes), len(discrete), ErrDimensionMismatch)
	}
	if len(continuous) != len(bounds) {
		return zero, fmt.Errorf("tryBuild: expected %v continuous values, "+
			"got %v: %w", len(bounds), len(continuous), ErrDimensionMismatch)
	}

	e, err := zero.Build(s, discrete, continuous)
	if err != nil {
		return zero, fmt.Errorf("tryBuild: %w", err)
	}
	return e, nil
}

// Random samples an element of s uniformly at random. Discrete values
// are drawn uniformly from [0, size) and continuous values uniformly
// from [Min, Max). An error is returned if the element could not be
// built or if the built element does not lie within s.
func Random[E Builder[E]](s Space, rng *rand.Rand) (E, error) {
	var zero E

	sizes := DiscreteDims(s)
	discrete := make([]int, len(sizes))
	for d, size := range sizes {
		if size < 1 {
			return zero, fmt.Errorf("random: discrete dimension %v has "+
				"no values", d)
		}
		discrete[d] = rng.Intn(size)
	}

	bounds := ContinuousDims(s)
	continuous := make([]float64, len(bounds))
	for d, b := range bounds {
		dist := distuv.Uniform{Min: b.Min, Max: b.Max, Src: rng}
		continuous[d] = dist.Rand()
	}

	e, err := TryBuild[E](s, discrete, continuous)
	if err != nil {
		return zero, fmt.Errorf("random: %w", err)
	}
	if !IsValid(e, s) {
		return zero, fmt.Errorf("random: sampled element %v not in "+
			"space: %w", e, ErrOutOfBounds)
	}
	return e, nil
}

// IsValid returns whether e lies within s. Every discrete value must lie
// in [0, size) and every continuous value in [Min, Max) of its
// dimension, and e and s must have the same dimensions.
func IsValid(e Elem, s Space) bool {
	for d := 0; ; d++ {
		size, sOk := s.DiscreteDim(d)
		v, eOk := e.Discrete(d)
		if sOk != eOk {
			return false
		}
		if !sOk {
			break
		}
		if v < 0 || v >= size {
			return false
		}
	}

	for d := 0; ; d++ {
		b, sOk := s.ContinuousDim(d)
		v, eOk := e.Continuous(d)
		if sOk != eOk {
			return false
		}
		if !sOk {
			return true
		}
		if v < b.Min || v >= b.Max {
			return false
		}
	}
}

// StateBuilder is a State which can construct new states of its own type
type StateBuilder[S any] interface {
	State
	Builder[S]
}
