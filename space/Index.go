package space

import "fmt"

// Size returns the number of elements in a discrete space with the
// given dimension sizes. A space with no dimensions has one element.
func Size(sizes []int) int {
	n := 1
	for _, size := range sizes {
		n *= size
	}
	return n
}

// Index encodes the discrete values of e as a single mixed-radix index
// using the dimension sizes in declaration order, so that the last
// dimension varies fastest.
func Index(e Elem, sizes []int) (int, error) {
	index := 0
	for d, size := range sizes {
		v, ok := e.Discrete(d)
		if !ok {
			return 0, fmt.Errorf("index: element has %v discrete "+
				"dimensions, expected %v: %w", d, len(sizes),
				ErrDimensionMismatch)
		}
		if v < 0 || v >= size {
			return 0, fmt.Errorf("index: value %v in dimension %v with "+
				"size %v: %w", v, d, size, ErrOutOfBounds)
		}
		index = index*size + v
	}

	if _, ok := e.Discrete(len(sizes)); ok {
		return 0, fmt.Errorf("index: element has more than %v discrete "+
			"dimensions: %w", len(sizes), ErrDimensionMismatch)
	}
	return index, nil
}

// Decode is the inverse of Index
func Decode(index int, sizes []int) ([]int, error) {
	if index < 0 || index >= Size(sizes) {
		return nil, fmt.Errorf("decode: index %v not in [0, %v): %w",
			index, Size(sizes), ErrOutOfBounds)
	}

	values := make([]int, len(sizes))
	for d := len(sizes) - 1; d >= 0; d-- {
		values[d] = index % sizes[d]
		index /= sizes[d]
	}
	return values, nil
}

// Odometer enumerates every value vector of a discrete space. The first
// vector is all zeros and the last declared dimension varies fastest,
// carrying into the dimensions before it.
type Odometer struct {
	sizes   []int
	current []int
	started bool
	done    bool
}

// NewOdometer returns a new Odometer over the given dimension sizes
func NewOdometer(sizes []int) *Odometer {
	done := false
	for _, size := range sizes {
		if size < 1 {
			done = true
		}
	}

	return &Odometer{
		sizes:   sizes,
		current: make([]int, len(sizes)),
		done:    done,
	}
}

// Next returns the next value vector and whether one was available.
// The returned slice is owned by the caller.
func (o *Odometer) Next() ([]int, bool) {
	if o.done {
		return nil, false
	}

	if o.started {
		d := len(o.sizes) - 1
		for ; d >= 0; d-- {
			o.current[d]++
			if o.current[d] < o.sizes[d] {
				break
			}
			o.current[d] = 0
		}
		if d < 0 {
			o.done = true
			return nil, false
		}
	}
	o.started = true

	out := make([]int, len(o.current))
	copy(out, o.current)
	return out, true
}

// Reset restarts the enumeration at the all-zeros vector
func (o *Odometer) Reset() {
	for i := range o.current {
		o.current[i] = 0
	}
	o.started = false
	o.done = Size(o.sizes) == 0
}
