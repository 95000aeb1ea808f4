// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment with
// states of type S. Reward holds one scalar per player. The Observation
// of a Last TimeStep is meaningless, since the episode has no next
// state.
type TimeStep[S any] struct {
	StepType    StepType
	Reward      []float64
	Observation S
	Number      int
}

// New returns a new TimeStep
func New[S any](t StepType, r []float64, o S, n int) TimeStep[S] {
	return TimeStep[S]{t, r, o, n}
}

// First returns whether a TimeStep is the first in an environment
func (t TimeStep[S]) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t TimeStep[S]) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t TimeStep[S]) Last() bool {
	return t.StepType == Last
}

// Next returns the next state and whether one exists
func (t TimeStep[S]) Next() (S, bool) {
	if t.Last() {
		var zero S
		return zero, false
	}
	return t.Observation, true
}

func (t TimeStep[S]) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %v  |  Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Number)
}

// Transition is a single learning update for one player: the state the
// player acted in, its action, the reward it accumulated until it acted
// again or the episode ended, and the state it acts in next. NextState
// is meaningless when Terminal is true.
type Transition[S, A any] struct {
	State     S
	Action    A
	Reward    float64
	NextState S
	Terminal  bool
}

func (t Transition[S, A]) String() string {
	if t.Terminal {
		return fmt.Sprintf("Transition | %v -> %v -> %.2f -> terminal",
			t.State, t.Action, t.Reward)
	}
	return fmt.Sprintf("Transition | %v -> %v -> %.2f -> %v", t.State,
		t.Action, t.Reward, t.NextState)
}

// Episode summarises a finished episode: its index, the number of
// environment steps taken and the return of each player
type Episode struct {
	Number  int
	Steps   int
	Returns []float64
}

func (e Episode) String() string {
	return fmt.Sprintf("Episode %v | Steps: %v | Returns: %v", e.Number,
		e.Steps, e.Returns)
}
