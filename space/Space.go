// Package space implements state and action spaces made of an ordered
// list of discrete dimensions followed by an ordered list of continuous
// dimensions, along with the elements that live in those spaces.
//
// Dimensions are queried by index starting at 0. The first index for
// which a query reports false ends the list of dimensions, so the
// dimensions of a space or element are always contiguous.
package space

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
)

// Space describes the shape of a state or action space.
//
// DiscreteDim returns the number of values dimension d may take. The
// values of the dimension are then 0, 1, ..., size-1.
// ContinuousDim returns the half-open interval [Min, Max) of the
// continuous dimension d.
type Space interface {
	DiscreteDim(d int) (size int, ok bool)
	ContinuousDim(d int) (bounds r1.Interval, ok bool)
}

// StateSpace is a Space of environment states which also reports how
// many players take turns in the environment.
type StateSpace interface {
	Space
	PlayerCount() int
}

// Elem is an element of a Space
type Elem interface {
	Discrete(d int) (int, bool)
	Continuous(d int) (float64, bool)
}

// State is an element of a StateSpace. CurrentPlayer returns the
// index of the player who acts in the state.
type State interface {
	Elem
	CurrentPlayer() int
}

// DiscreteDims returns the sizes of all discrete dimensions of s
func DiscreteDims(s Space) []int {
	var sizes []int
	for d := 0; ; d++ {
		size, ok := s.DiscreteDim(d)
		if !ok {
			return sizes
		}
		sizes = append(sizes, size)
	}
}

// ContinuousDims returns the bounds of all continuous dimensions of s
func ContinuousDims(s Space) []r1.Interval {
	var bounds []r1.Interval
	for d := 0; ; d++ {
		b, ok := s.ContinuousDim(d)
		if !ok {
			return bounds
		}
		bounds = append(bounds, b)
	}
}

// Values returns the discrete and continuous values held by e
func Values(e Elem) (discrete []int, continuous []float64) {
	for d := 0; ; d++ {
		v, ok := e.Discrete(d)
		if !ok {
			break
		}
		discrete = append(discrete, v)
	}
	for d := 0; ; d++ {
		v, ok := e.Continuous(d)
		if !ok {
			break
		}
		continuous = append(continuous, v)
	}
	return discrete, continuous
}

// Discrete is a Space made only of discrete dimensions, one per
// element, each holding the size of the dimension.
type Discrete []int

// DiscreteDim implements the Space interface
func (s Discrete) DiscreteDim(d int) (int, bool) {
	if d < 0 || d >= len(s) {
		return 0, false
	}
	return s[d], true
}

// ContinuousDim implements the Space interface
func (s Discrete) ContinuousDim(int) (r1.Interval, bool) {
	return r1.Interval{}, false
}

// Box is a Space with both discrete and continuous dimensions
type Box struct {
	Sizes  []int
	Bounds []r1.Interval
}

// DiscreteDim implements the Space interface
func (b Box) DiscreteDim(d int) (int, bool) {
	return Discrete(b.Sizes).DiscreteDim(d)
}

// ContinuousDim implements the Space interface
func (b Box) ContinuousDim(d int) (r1.Interval, bool) {
	if d < 0 || d >= len(b.Bounds) {
		return r1.Interval{}, false
	}
	return b.Bounds[d], true
}

// players attaches a player count to a Space
type players struct {
	Space
	count int
}

// WithPlayers returns a StateSpace with the dimensions of s and the
// given number of players.
func WithPlayers(s Space, count int) StateSpace {
	if count < 1 {
		panic(fmt.Sprintf("withPlayers: player count must be positive, "+
			"got %v", count))
	}
	return players{s, count}
}

// PlayerCount implements the StateSpace interface
func (p players) PlayerCount() int {
	return p.count
}
