package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestDims(t *testing.T) {
	s := Box{
		Sizes:  []int{3, 4},
		Bounds: []r1.Interval{{Min: -1, Max: 1}},
	}
	assert.Equal(t, []int{3, 4}, DiscreteDims(s))
	assert.Equal(t, []r1.Interval{{Min: -1, Max: 1}}, ContinuousDims(s))

	assert.Nil(t, ContinuousDims(Discrete{2}))
	assert.Nil(t, DiscreteDims(Discrete{}))
}

func TestTryBuildRoundTrip(t *testing.T) {
	s := Discrete{3, 3, 2}
	odo := NewOdometer(DiscreteDims(s))
	for v, ok := odo.Next(); ok; v, ok = odo.Next() {
		e, err := TryBuild[Vec](s, v, nil)
		require.NoError(t, err)
		for d := range v {
			got, ok := e.Discrete(d)
			require.True(t, ok)
			assert.Equal(t, v[d], got)
		}
		_, ok := e.Discrete(len(v))
		assert.False(t, ok)
	}
}

func TestTryBuildMismatch(t *testing.T) {
	s := Box{Sizes: []int{3, 3}, Bounds: []r1.Interval{{Min: 0, Max: 1}}}

	tests := []struct {
		name       string
		discrete   []int
		continuous []float64
	}{
		{"TooFewDiscrete", []int{1}, []float64{0.5}},
		{"TooManyDiscrete", []int{1, 2, 0}, []float64{0.5}},
		{"TooFewContinuous", []int{1, 2}, nil},
		{"TooManyContinuous", []int{1, 2}, []float64{0.1, 0.2}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := TryBuild[Vec](s, test.discrete, test.continuous)
			assert.ErrorIs(t, err, ErrDimensionMismatch)
		})
	}
}

func TestIsValid(t *testing.T) {
	s := Box{Sizes: []int{3}, Bounds: []r1.Interval{{Min: -1, Max: 1}}}

	assert.True(t, IsValid(Vec{Disc: []int{2}, Cont: []float64{-1}}, s))
	assert.False(t, IsValid(Vec{Disc: []int{3}, Cont: []float64{0}}, s))
	assert.False(t, IsValid(Vec{Disc: []int{-1}, Cont: []float64{0}}, s))
	assert.False(t, IsValid(Vec{Disc: []int{0}, Cont: []float64{1}}, s))
	assert.False(t, IsValid(Vec{Disc: []int{0}}, s))
	assert.False(t, IsValid(Vec{Disc: []int{0, 0}, Cont: []float64{0}}, s))
}

func TestRandom(t *testing.T) {
	s := Box{
		Sizes:  []int{2, 5},
		Bounds: []r1.Interval{{Min: 10, Max: 11}, {Min: -3, Max: 0}},
	}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		e, err := Random[Vec](s, rng)
		require.NoError(t, err)
		assert.True(t, IsValid(e, s))
	}
}

func TestRandomCoversDiscreteValues(t *testing.T) {
	s := Discrete{4}
	rng := rand.New(rand.NewSource(7))

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		e, err := Random[Vec](s, rng)
		require.NoError(t, err)
		seen[e.Disc[0]] = true
	}
	assert.Len(t, seen, 4)
}

func TestWithPlayers(t *testing.T) {
	s := WithPlayers(Discrete{2}, 2)
	assert.Equal(t, 2, s.PlayerCount())
	assert.Equal(t, []int{2}, DiscreteDims(s))

	assert.Panics(t, func() { WithPlayers(Discrete{2}, 0) })
}
