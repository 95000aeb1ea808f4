package cli

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/agent/deepq"
	"github.com/samuelfneumann/gorl/agent/qlearning"
	"github.com/samuelfneumann/gorl/agent/random"
	"github.com/samuelfneumann/gorl/checkpoint"
	"github.com/samuelfneumann/gorl/space"
)

// learner is an agent which can be stored
type learner[S space.State, A space.Elem] interface {
	agent.Agent[S, A]
	agent.Typed
}

// newAgent creates the agent described by c
func newAgent[S space.StateBuilder[S], A space.Builder[A]](
	c agent.TypedConfig, seed uint64) (learner[S, A], error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newAgent: %w", err)
	}

	switch conf := c.Config.(type) {
	case qlearning.Config:
		return qlearning.New[S, A](conf, seed)
	case deepq.Config:
		return deepq.New[S, A](conf, seed)
	case random.Config:
		return random.New[S, A](seed), nil
	default:
		return nil, fmt.Errorf("newAgent: unsupported agent type %q", c.Type)
	}
}

// loadAgent loads the agent stored under name, whichever type of agent
// it is
func loadAgent[S space.StateBuilder[S], A space.Builder[A]](
	store checkpoint.Store, name string) (learner[S, A], error) {
	candidates := []func() (learner[S, A], error){
		func() (learner[S, A], error) {
			return qlearning.New[S, A](qlearning.DefaultConfig(), 0)
		},
		func() (learner[S, A], error) {
			return deepq.New[S, A](deepq.DefaultConfig(), 0)
		},
	}

	for _, candidate := range candidates {
		a, err := candidate()
		if err != nil {
			return nil, fmt.Errorf("loadAgent: %w", err)
		}

		err = store.Load(name, a)
		if errors.Is(err, checkpoint.ErrTypeMismatch) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("loadAgent: %w", err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("loadAgent: %q holds no learning agent", name)
}

// gridShape returns the rows and columns of the grid world a loaded
// agent was trained on
func gridShape(a any) (rows, cols int, err error) {
	s, ok := a.(interface{ States() space.Space })
	if !ok {
		return 0, 0, fmt.Errorf("gridShape: %T records no state space", a)
	}

	sizes := space.DiscreteDims(s.States())
	if len(sizes) != 2 || len(space.ContinuousDims(s.States())) > 0 {
		return 0, 0, fmt.Errorf("gridShape: agent was not trained on a "+
			"grid world, state sizes %v", sizes)
	}
	return sizes[0], sizes[1], nil
}
