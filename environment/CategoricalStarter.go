package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting states as discrete values sampled
// from a multi-dimensional uniform categorical distribution. Dimension i
// samples values in (0, 1, 2, ... bounds[i]-1).
//
// Values accepted by Reject are never returned. Reject must leave at
// least one acceptable value vector.
type CategoricalStarter struct {
	Reject func([]int) bool

	rand []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter, sampling
// dimension i from (0, 1, 2, ... bounds[i]-1)
func NewCategoricalStarter(bounds []int, seed uint64) *CategoricalStarter {
	source := rand.NewSource(seed)

	dists := make([]distuv.Categorical, len(bounds))
	for i := range dists {
		weights := make([]float64, bounds[i])
		for j := range weights {
			weights[j] = 1.0 / float64(len(weights))
		}

		dists[i] = distuv.NewCategorical(weights, source)
	}

	return &CategoricalStarter{rand: dists}
}

// Start returns the values of a starting state
func (c *CategoricalStarter) Start() []int {
	for {
		start := make([]int, len(c.rand))
		for i := range start {
			start[i] = int(c.rand[i].Rand())
		}

		if c.Reject == nil || !c.Reject(start) {
			return start
		}
	}
}
