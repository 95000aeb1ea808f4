// Package deepq implements the Deep Q-Network algorithm for environments
// with discrete actions. States may have both discrete and continuous
// dimensions.
package deepq

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/agent/policy"
	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/expreplay"
	"github.com/samuelfneumann/gorl/network"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"github.com/samuelfneumann/gorl/utils/matutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// DeepQ implements the Deep Q-Network algorithm. The policy network
// predicts the value of every action at once, with one output per
// action in enumeration order. Training targets are computed with a
// target network, which follows the policy network every
// TargetUpdateInterval gradient steps.
type DeepQ[S space.StateBuilder[S], A space.Builder[A]] struct {
	config    Config
	seed      uint64
	behaviour *policy.EGreedy
	replay    *expreplay.MemoryBuffer

	policyNet *network.NeuralNet
	targetNet *network.NeuralNet

	stateSizes  []int
	stateBounds []r1.Interval
	actionSizes []int

	gradientSteps int
}

// New creates a new DeepQ agent. The agent must be initialized with
// Init before acting.
func New[S space.StateBuilder[S], A space.Builder[A]](c Config,
	seed uint64) (*DeepQ[S, A], error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	behaviour, err := policy.NewEGreedy(c.Epsilon, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	replay, err := expreplay.New(c.Capacity, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &DeepQ[S, A]{
		config:    c,
		seed:      seed,
		behaviour: behaviour,
		replay:    replay,
	}, nil
}

// Type implements the agent.Typed interface
func (d *DeepQ[S, A]) Type() agent.Type {
	return agent.DeepQ
}

// Config returns the configuration of the agent
func (d *DeepQ[S, A]) Config() Config {
	return d.config
}

// Network returns the policy network
func (d *DeepQ[S, A]) Network() *network.NeuralNet {
	return d.policyNet
}

// TargetNetwork returns the target network
func (d *DeepQ[S, A]) TargetNetwork() *network.NeuralNet {
	return d.targetNet
}

// Memory returns the experience replay buffer
func (d *DeepQ[S, A]) Memory() *expreplay.MemoryBuffer {
	return d.replay
}

// States returns the state space the agent was initialized with
func (d *DeepQ[S, A]) States() space.Space {
	return space.Box{
		Sizes:  slices.Clone(d.stateSizes),
		Bounds: slices.Clone(d.stateBounds),
	}
}

// GradientSteps returns the number of batch updates performed so far
func (d *DeepQ[S, A]) GradientSteps() int {
	return d.gradientSteps
}

// Init implements the agent.Agent interface. Init fails if the action
// space of env has a continuous dimension or if the state space has no
// dimensions.
func (d *DeepQ[S, A]) Init(env environment.Environment[S, A]) bool {
	stateSpace, actionSpace := env.StateSpace(), env.ActionSpace()
	if len(space.ContinuousDims(actionSpace)) > 0 {
		return false
	}

	stateSizes := space.DiscreteDims(stateSpace)
	stateBounds := space.ContinuousDims(stateSpace)
	actionSizes := space.DiscreteDims(actionSpace)

	inputs := len(stateSizes) + len(stateBounds)
	outputs := space.Size(actionSizes)
	if inputs == 0 || outputs == 0 || checkStates(stateSizes,
		stateBounds) != nil {
		return false
	}

	if d.policyNet != nil {
		return slices.Equal(stateSizes, d.stateSizes) &&
			slices.Equal(stateBounds, d.stateBounds) &&
			slices.Equal(actionSizes, d.actionSizes)
	}

	d.stateSizes, d.stateBounds, d.actionSizes = stateSizes, stateBounds,
		actionSizes

	d.policyNet = network.New(d.config.LearningRate, network.Sigmoid(),
		network.Linear(), network.MSE(), d.seed)
	d.policyNet.AddLayers([]int{inputs, d.config.Hidden, outputs})
	d.targetNet = d.policyNet.Clone(d.seed)
	return true
}

// checkStates returns an error if a state dimension cannot be scaled
// to [0, 1]
func checkStates(sizes []int, bounds []r1.Interval) error {
	for i, size := range sizes {
		if size < 1 {
			return fmt.Errorf("discrete dimension %v has size %v", i, size)
		}
	}
	for i, b := range bounds {
		if !(b.Max > b.Min) {
			return fmt.Errorf("continuous dimension %v has bounds [%v, %v)",
				i, b.Min, b.Max)
		}
	}
	return nil
}

// initialized returns an error if the agent has no networks
func (d *DeepQ[S, A]) initialized(op string) error {
	if d.policyNet == nil {
		return fmt.Errorf("%v: agent not initialized", op)
	}
	return nil
}

// EncodeInput encodes a state as the input to the networks. Discrete
// values are divided by the size of their dimension and continuous
// values are scaled so that their dimension's bounds map to [0, 1).
func (d *DeepQ[S, A]) EncodeInput(state S) ([]float64, error) {
	if err := d.initialized("encodeInput"); err != nil {
		return nil, err
	}

	input := make([]float64, 0, len(d.stateSizes)+len(d.stateBounds))
	for i, size := range d.stateSizes {
		v, ok := state.Discrete(i)
		if !ok {
			return nil, fmt.Errorf("encodeInput: missing discrete "+
				"dimension %v: %w", i, space.ErrDimensionMismatch)
		}
		input = append(input, float64(v)/float64(size))
	}

	for i, bounds := range d.stateBounds {
		v, ok := state.Continuous(i)
		if !ok {
			return nil, fmt.Errorf("encodeInput: missing continuous "+
				"dimension %v: %w", i, space.ErrDimensionMismatch)
		}
		input = append(input, (v-bounds.Min)/(bounds.Max-bounds.Min))
	}
	return input, nil
}

// Values returns the predicted value of every action in state, in
// enumeration order
func (d *DeepQ[S, A]) Values(state S) ([]float64, error) {
	input, err := d.EncodeInput(state)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	return d.policyNet.Predict(input)
}

// Act implements the agent.Agent interface
func (d *DeepQ[S, A]) Act(state S) (A, error) {
	if err := d.initialized("act"); err != nil {
		var zero A
		return zero, err
	}

	return policy.SelectAction(d.behaviour, space.Discrete(d.actionSizes),
		func() (A, error) { return d.Predict(state) })
}

// Predict implements the agent.Agent interface. The first action with
// the largest predicted value is returned.
func (d *DeepQ[S, A]) Predict(state S) (A, error) {
	var zero A

	values, err := d.Values(state)
	if err != nil {
		return zero, fmt.Errorf("predict: %w", err)
	}
	best := matutils.MaxVec(mat.NewVecDense(len(values), values))

	actionValues, err := space.Decode(best, d.actionSizes)
	if err != nil {
		return zero, fmt.Errorf("predict: %w", err)
	}
	return space.TryBuild[A](space.Discrete(d.actionSizes), actionValues, nil)
}

// Learn implements the agent.Agent interface. The transition is stored
// in the replay buffer and, once the buffer holds at least BatchSize
// transitions, a batch is sampled to train the policy network.
func (d *DeepQ[S, A]) Learn(t timestep.Transition[S, A]) error {
	if err := d.initialized("learn"); err != nil {
		return err
	}

	state, err := d.EncodeInput(t.State)
	if err != nil {
		return fmt.Errorf("learn: state: %w", err)
	}
	action, err := space.Index(t.Action, d.actionSizes)
	if err != nil {
		return fmt.Errorf("learn: action: %w", err)
	}

	var next []float64
	if !t.Terminal {
		next, err = d.EncodeInput(t.NextState)
		if err != nil {
			return fmt.Errorf("learn: next state: %w", err)
		}
	}

	d.replay.Add(expreplay.Experience{
		State:     state,
		Action:    action,
		Reward:    t.Reward,
		NextState: next,
		Terminal:  t.Terminal,
	})

	// Don't update if the replay buffer has insufficient samples
	if d.replay.Len() < d.config.BatchSize {
		return nil
	}
	if err := d.step(); err != nil {
		return fmt.Errorf("learn: %w", err)
	}
	return nil
}

// step performs a single batch update of the policy network and updates
// the target network when due
func (d *DeepQ[S, A]) step() error {
	batch, err := d.replay.Sample(d.config.BatchSize)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}

	inputs := make([][]float64, len(batch))
	targets := make([][]float64, len(batch))
	for i, e := range batch {
		prediction, err := d.policyNet.Predict(e.State)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
		target := slices.Clone(prediction)

		future := 0.0
		if !e.Terminal {
			nextValues, err := d.targetNet.Predict(e.NextState)
			if err != nil {
				return fmt.Errorf("step: %w", err)
			}
			future = slices.Max(nextValues)
		}
		target[e.Action] = e.Reward + d.config.Discount*future

		inputs[i], targets[i] = e.State, target
	}

	if err := d.policyNet.Train(inputs, targets); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	d.gradientSteps++

	// Update the target network towards the newly learned weights
	if d.gradientSteps%d.config.TargetUpdateInterval == 0 {
		if d.config.Tau == 1.0 {
			err = d.targetNet.Set(d.policyNet)
		} else {
			err = d.targetNet.Polyak(d.policyNet, d.config.Tau)
		}
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
	}
	return nil
}

type deepqJSON struct {
	Config        Config             `json:"config"`
	StateSizes    []int              `json:"state_sizes"`
	StateBounds   []r1.Interval      `json:"state_bounds"`
	ActionSizes   []int              `json:"action_sizes"`
	PolicyNet     *network.NeuralNet `json:"policy_network"`
	TargetNet     *network.NeuralNet `json:"target_network"`
	GradientSteps int                `json:"gradient_steps"`
}

// MarshalJSON implements the json.Marshaler interface. The replay
// buffer is not persisted.
func (d *DeepQ[S, A]) MarshalJSON() ([]byte, error) {
	if err := d.initialized("marshalJSON"); err != nil {
		return nil, err
	}

	return json.Marshal(deepqJSON{
		Config:        d.config,
		StateSizes:    d.stateSizes,
		StateBounds:   d.stateBounds,
		ActionSizes:   d.actionSizes,
		PolicyNet:     d.policyNet,
		TargetNet:     d.targetNet,
		GradientSteps: d.gradientSteps,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. The loaded
// agent starts with an empty replay buffer.
func (d *DeepQ[S, A]) UnmarshalJSON(data []byte) error {
	var decoded deepqJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if err := decoded.Config.Validate(); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if decoded.PolicyNet == nil || decoded.TargetNet == nil {
		return fmt.Errorf("unmarshalJSON: missing networks")
	}

	if err := checkStates(decoded.StateSizes,
		decoded.StateBounds); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	inputs := len(decoded.StateSizes) + len(decoded.StateBounds)
	outputs := space.Size(decoded.ActionSizes)
	for _, net := range []*network.NeuralNet{decoded.PolicyNet,
		decoded.TargetNet} {
		if net.Features() != inputs || net.Outputs() != outputs {
			return fmt.Errorf("unmarshalJSON: network shape (%v, %v) does "+
				"not match spaces (%v, %v)", net.Features(), net.Outputs(),
				inputs, outputs)
		}
	}

	replay, err := expreplay.New(decoded.Config.Capacity, d.seed)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if d.behaviour == nil {
		d.behaviour, err = policy.NewEGreedy(decoded.Config.Epsilon, d.seed)
		if err != nil {
			return fmt.Errorf("unmarshalJSON: %w", err)
		}
	}
	d.behaviour.SetEpsilon(decoded.Config.Epsilon)

	d.config = decoded.Config
	d.replay = replay
	d.stateSizes = decoded.StateSizes
	d.stateBounds = decoded.StateBounds
	d.actionSizes = decoded.ActionSizes
	d.policyNet = decoded.PolicyNet
	d.targetNet = decoded.TargetNet
	d.gradientSteps = decoded.GradientSteps
	return nil
}
