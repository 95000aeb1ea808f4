package expreplay

import (
	"golang.org/x/exp/rand"
)

// uniformSelector selects distinct indices uniformly randomly
type uniformSelector struct {
	rng *rand.Rand
}

func newUniformSelector(seed uint64) *uniformSelector {
	return &uniformSelector{rng: rand.New(rand.NewSource(seed))}
}

// choose selects n distinct indices in [0, size) without replacement
// using a partial Fisher-Yates shuffle
func (u *uniformSelector) choose(n, size int) []int {
	indices := make([]int, size)
	for i := range indices {
		indices[i] = i
	}

	for i := 0; i < n; i++ {
		j := i + u.rng.Intn(size-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:n]
}
