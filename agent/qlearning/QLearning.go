// Package qlearning implements the tabular Q-Learning algorithm for
// environments with discrete state and action spaces.
//
// Action values are stored in a flat table. States and actions are
// encoded as mixed-radix indices over their dimension sizes and the
// value of action a in state s is stored at s*|A| + a.
package qlearning

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/agent/policy"
	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"gonum.org/v1/gonum/floats"
)

// QLearning implements the Q-Learning algorithm with an ε-greedy
// behaviour policy
type QLearning[S space.StateBuilder[S], A space.Builder[A]] struct {
	config    Config
	behaviour *policy.EGreedy

	stateSizes  []int
	actionSizes []int
	table       []float64
}

// New creates a new QLearning agent. The agent must be initialized with
// Init before acting.
func New[S space.StateBuilder[S], A space.Builder[A]](c Config,
	seed uint64) (*QLearning[S, A], error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	behaviour, err := policy.NewEGreedy(c.Epsilon, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &QLearning[S, A]{config: c, behaviour: behaviour}, nil
}

// Type implements the agent.Typed interface
func (q *QLearning[S, A]) Type() agent.Type {
	return agent.QLearning
}

// Config returns the configuration of the agent
func (q *QLearning[S, A]) Config() Config {
	return q.config
}

// States returns the state space the agent was initialized with
func (q *QLearning[S, A]) States() space.Space {
	return space.Discrete(slices.Clone(q.stateSizes))
}

// Init implements the agent.Agent interface. Init fails if either space
// of env has a continuous dimension. An initialized agent keeps its
// table and only accepts environments with the same spaces.
func (q *QLearning[S, A]) Init(env environment.Environment[S, A]) bool {
	stateSpace, actionSpace := env.StateSpace(), env.ActionSpace()
	if len(space.ContinuousDims(stateSpace)) > 0 ||
		len(space.ContinuousDims(actionSpace)) > 0 {
		return false
	}

	stateSizes := space.DiscreteDims(stateSpace)
	actionSizes := space.DiscreteDims(actionSpace)
	if space.Size(stateSizes) == 0 || space.Size(actionSizes) == 0 {
		return false
	}

	if q.table != nil {
		return slices.Equal(stateSizes, q.stateSizes) &&
			slices.Equal(actionSizes, q.actionSizes)
	}

	q.stateSizes, q.actionSizes = stateSizes, actionSizes
	q.table = make([]float64, space.Size(stateSizes)*space.Size(actionSizes))
	return true
}

// initialized returns an error if the agent has no table
func (q *QLearning[S, A]) initialized(op string) error {
	if q.table == nil {
		return fmt.Errorf("%v: agent not initialized", op)
	}
	return nil
}

// Act implements the agent.Agent interface
func (q *QLearning[S, A]) Act(state S) (A, error) {
	if err := q.initialized("act"); err != nil {
		var zero A
		return zero, err
	}

	return policy.SelectAction(q.behaviour, space.Discrete(q.actionSizes),
		func() (A, error) { return q.Predict(state) })
}

// Predict implements the agent.Agent interface. Actions are enumerated
// with the last action dimension varying fastest and the first action
// with the largest value is returned.
func (q *QLearning[S, A]) Predict(state S) (A, error) {
	var zero A
	if err := q.initialized("predict"); err != nil {
		return zero, err
	}

	values, err := q.row(state)
	if err != nil {
		return zero, fmt.Errorf("predict: %w", err)
	}

	best, bestValue := 0, math.Inf(-1)
	for i, v := range values {
		if v > bestValue {
			best, bestValue = i, v
		}
	}

	action, err := q.decodeAction(best)
	if err != nil {
		return zero, fmt.Errorf("predict: %w", err)
	}
	return action, nil
}

// Learn implements the agent.Agent interface
func (q *QLearning[S, A]) Learn(t timestep.Transition[S, A]) error {
	if err := q.initialized("learn"); err != nil {
		return err
	}

	stateIndex, err := space.Index(t.State, q.stateSizes)
	if err != nil {
		return fmt.Errorf("learn: state: %w", err)
	}
	actionIndex, err := space.Index(t.Action, q.actionSizes)
	if err != nil {
		return fmt.Errorf("learn: action: %w", err)
	}

	maxNext := 0.0
	if !t.Terminal {
		next, err := q.row(t.NextState)
		if err != nil {
			return fmt.Errorf("learn: next state: %w", err)
		}
		maxNext = floats.Max(next)
	}

	i := stateIndex*space.Size(q.actionSizes) + actionIndex
	target := t.Reward + q.config.Discount*maxNext
	q.table[i] += q.config.LearningRate * (target - q.table[i])
	return nil
}

// Values returns the action values of every action in state, in
// enumeration order
func (q *QLearning[S, A]) Values(state S) ([]float64, error) {
	if err := q.initialized("values"); err != nil {
		return nil, err
	}

	row, err := q.row(state)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	return slices.Clone(row), nil
}

// QTable returns a copy of the action value table
func (q *QLearning[S, A]) QTable() []float64 {
	return slices.Clone(q.table)
}

// Decision is a state together with the greedy action in that state
type Decision[S, A any] struct {
	State  S `json:"state"`
	Action A `json:"action"`
}

// PredictAll returns the greedy action of every state in the state
// space. States which cannot be built, such as unreachable game
// positions, are skipped.
func (q *QLearning[S, A]) PredictAll() ([]Decision[S, A], error) {
	if err := q.initialized("predictAll"); err != nil {
		return nil, err
	}

	stateSpace := space.Discrete(q.stateSizes)
	decisions := make([]Decision[S, A], 0, space.Size(q.stateSizes))

	odo := space.NewOdometer(q.stateSizes)
	for v, ok := odo.Next(); ok; v, ok = odo.Next() {
		state, err := space.TryBuild[S](stateSpace, v, nil)
		if err != nil {
			continue
		}

		action, err := q.Predict(state)
		if err != nil {
			return nil, fmt.Errorf("predictAll: %w", err)
		}
		decisions = append(decisions, Decision[S, A]{state, action})
	}
	return decisions, nil
}

// row returns the slice of the table holding the values of state
func (q *QLearning[S, A]) row(state S) ([]float64, error) {
	stateIndex, err := space.Index(state, q.stateSizes)
	if err != nil {
		return nil, err
	}

	n := space.Size(q.actionSizes)
	return q.table[stateIndex*n : (stateIndex+1)*n], nil
}

// decodeAction builds the action with the given index
func (q *QLearning[S, A]) decodeAction(index int) (A, error) {
	values, err := space.Decode(index, q.actionSizes)
	if err != nil {
		var zero A
		return zero, err
	}
	return space.TryBuild[A](space.Discrete(q.actionSizes), values, nil)
}

type qlearningJSON struct {
	Config      Config    `json:"config"`
	StateSizes  []int     `json:"state_sizes"`
	ActionSizes []int     `json:"action_sizes"`
	Table       []float64 `json:"table"`
}

// MarshalJSON implements the json.Marshaler interface
func (q *QLearning[S, A]) MarshalJSON() ([]byte, error) {
	return json.Marshal(qlearningJSON{
		Config:      q.config,
		StateSizes:  q.stateSizes,
		ActionSizes: q.actionSizes,
		Table:       q.table,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. The
// exploration source of the agent is kept.
func (q *QLearning[S, A]) UnmarshalJSON(data []byte) error {
	var decoded qlearningJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if err := decoded.Config.Validate(); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	want := space.Size(decoded.StateSizes) * space.Size(decoded.ActionSizes)
	if len(decoded.Table) != want {
		return fmt.Errorf("unmarshalJSON: table has %v values, expected %v",
			len(decoded.Table), want)
	}

	if q.behaviour == nil {
		behaviour, err := policy.NewEGreedy(decoded.Config.Epsilon, 0)
		if err != nil {
			return fmt.Errorf("unmarshalJSON: %w", err)
		}
		q.behaviour = behaviour
	}
	q.behaviour.SetEpsilon(decoded.Config.Epsilon)

	q.config = decoded.Config
	q.stateSizes = decoded.StateSizes
	q.actionSizes = decoded.ActionSizes
	q.table = decoded.Table
	return nil
}
