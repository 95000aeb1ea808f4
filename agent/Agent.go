// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
)

// Agent determines the implementation details of an agent or algorithm
// acting with actions of type A in states of type S.
//
// Init prepares the agent for an environment and reports whether the
// agent supports its spaces. Act selects an action to take during
// training, possibly exploring. Predict selects the agent's greedy
// action and never changes the agent. Learn performs a single update
// from a transition of one player.
type Agent[S space.State, A space.Elem] interface {
	Init(env environment.Environment[S, A]) bool
	Act(state S) (A, error)
	Learn(t timestep.Transition[S, A]) error
	Predict(state S) (A, error)
}

// Typed is implemented by agents which can be persisted. Type is used
// to check that persisted data is loaded into the right kind of agent.
type Typed interface {
	Type() Type
}
