// Package random implements an agent which selects actions uniformly at
// random. It is useful as a baseline and as an opponent in multi-player
// environments.
package random

import (
	"fmt"

	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"golang.org/x/exp/rand"
)

func init() {
	agent.Register(agent.Random, Config{})
}

// Config is the configuration of a Random agent. Random agents have no
// hyperparameters.
type Config struct{}

// Validate implements the agent.Config interface
func (c Config) Validate() error {
	return agent.ValidateStruct(c)
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return agent.Random
}

// Random is an agent which acts uniformly at random and never learns
type Random[S space.State, A space.Builder[A]] struct {
	rng     *rand.Rand
	actions space.Space
}

// New returns a new Random agent
func New[S space.State, A space.Builder[A]](seed uint64) *Random[S, A] {
	return &Random[S, A]{rng: rand.New(rand.NewSource(seed))}
}

// Type implements the agent.Typed interface
func (r *Random[S, A]) Type() agent.Type {
	return agent.Random
}

// Init implements the agent.Agent interface. Any environment is
// supported.
func (r *Random[S, A]) Init(env environment.Environment[S, A]) bool {
	r.actions = env.ActionSpace()
	return true
}

// Act implements the agent.Agent interface
func (r *Random[S, A]) Act(state S) (A, error) {
	return r.Predict(state)
}

// Learn implements the agent.Agent interface. Random agents ignore all
// transitions.
func (r *Random[S, A]) Learn(timestep.Transition[S, A]) error {
	return nil
}

// Predict implements the agent.Agent interface
func (r *Random[S, A]) Predict(S) (A, error) {
	if r.actions == nil {
		var zero A
		return zero, fmt.Errorf("predict: agent not initialized")
	}
	return space.Random[A](r.actions, r.rng)
}
