// Package environment outlines the interfaces and structs needed to
// implement concrete turn-based environments
package environment

import (
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
)

// Starter implements a distribution of starting states and samples the
// discrete values of starting states for environments
type Starter interface {
	Start() []int
}

// Environment implements a simulated, possibly multi-player,
// environment with states of type S and actions of type A.
//
// Reset begins a new episode and returns its First TimeStep. Step
// applies the action of the current player and returns the resulting
// TimeStep, whose Reward holds one value per player.
type Environment[S space.State, A space.Elem] interface {
	StateSpace() space.StateSpace
	ActionSpace() space.Space
	Reset() timestep.TimeStep[S]
	Step(action A) timestep.TimeStep[S]
}
