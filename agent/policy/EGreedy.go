// Package policy implements action selection policies shared by agents
package policy

import (
	"fmt"

	"github.com/samuelfneumann/gorl/space"
	"golang.org/x/exp/rand"
)

// EGreedy implements an ε-greedy behaviour policy. With probability ε a
// uniformly random action is selected, otherwise the greedy action is.
type EGreedy struct {
	epsilon float64
	rng     *rand.Rand
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random action is selected
func NewEGreedy(e float64, seed uint64) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon must be in [0, 1], "+
			"got %v", e)
	}
	return &EGreedy{epsilon: e, rng: rand.New(rand.NewSource(seed))}, nil
}

// Epsilon returns the exploration probability
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the exploration probability
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// Explore returns whether the next action should be chosen at random
func (p *EGreedy) Explore() bool {
	return p.rng.Float64() < p.epsilon
}

// Rand returns the source of randomness of the policy
func (p *EGreedy) Rand() *rand.Rand {
	return p.rng
}

// SelectAction selects an action from the action space s, calling
// greedy only when not exploring
func SelectAction[A space.Builder[A]](p *EGreedy, s space.Space,
	greedy func() (A, error)) (A, error) {
	if p.Explore() {
		return space.Random[A](s, p.rng)
	}
	return greedy()
}
