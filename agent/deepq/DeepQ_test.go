package deepq

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// spaceEnv is an environment which only reports its spaces
type spaceEnv struct {
	states  space.Space
	actions space.Space
}

func (e spaceEnv) StateSpace() space.StateSpace {
	return space.WithPlayers(e.states, 1)
}

func (e spaceEnv) ActionSpace() space.Space {
	return e.actions
}

func (e spaceEnv) Reset() timestep.TimeStep[space.PlayerVec] {
	return timestep.TimeStep[space.PlayerVec]{}
}

func (e spaceEnv) Step(space.Vec) timestep.TimeStep[space.PlayerVec] {
	return timestep.TimeStep[space.PlayerVec]{}
}

type transition = timestep.Transition[space.PlayerVec, space.Vec]

func newAgent(t *testing.T, c Config, states, actions space.Space) *DeepQ[
	space.PlayerVec, space.Vec] {
	t.Helper()
	d, err := New[space.PlayerVec, space.Vec](c, 1)
	require.NoError(t, err)
	require.True(t, d.Init(spaceEnv{states, actions}))
	return d
}

func state(v ...int) space.PlayerVec {
	return space.PlayerVec{Vec: space.Vec{Disc: v}}
}

func action(v ...int) space.Vec {
	return space.Vec{Disc: v}
}

func smallConfig() Config {
	c := DefaultConfig()
	c.Hidden = 8
	c.BatchSize = 4
	c.Capacity = 50
	return c
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.BatchSize = c.Capacity + 1
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Tau = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.TargetUpdateInterval = 0
	_, err := New[space.PlayerVec, space.Vec](c, 1)
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	d, err := New[space.PlayerVec, space.Vec](DefaultConfig(), 1)
	require.NoError(t, err)

	continuous := space.Box{Bounds: []r1.Interval{{Min: 0, Max: 1}}}
	assert.False(t, d.Init(spaceEnv{space.Discrete{2}, continuous}))
	assert.False(t, d.Init(spaceEnv{space.Discrete{}, space.Discrete{2}}))

	// States which cannot be scaled to [0, 1]
	flat := space.Box{Sizes: []int{2}, Bounds: []r1.Interval{{Min: 1, Max: 1}}}
	assert.False(t, d.Init(spaceEnv{flat, space.Discrete{2}}))
	assert.False(t, d.Init(spaceEnv{space.Discrete{2, 0}, space.Discrete{2}}))

	states := space.Box{
		Sizes:  []int{3, 3},
		Bounds: []r1.Interval{{Min: -1, Max: 1}},
	}
	require.True(t, d.Init(spaceEnv{states, space.Discrete{3, 2}}))

	assert.Equal(t, states, d.States())
	assert.Equal(t, 3, d.Network().Features())
	assert.Equal(t, 6, d.Network().Outputs())
	require.Len(t, d.Network().Layers(), 2)
	_, hidden := d.Network().Layers()[0].Dims()
	assert.Equal(t, 64, hidden)

	// The target network starts as a copy of the policy network
	for i, layer := range d.Network().Layers() {
		assert.True(t, mat.Equal(layer.Weights,
			d.TargetNetwork().Layers()[i].Weights))
	}

	assert.True(t, d.Init(spaceEnv{states, space.Discrete{3, 2}}))
	assert.False(t, d.Init(spaceEnv{states, space.Discrete{3, 3}}))
}

func TestEncodeInput(t *testing.T) {
	states := space.Box{
		Sizes:  []int{4, 2},
		Bounds: []r1.Interval{{Min: -1, Max: 3}},
	}
	d := newAgent(t, smallConfig(), states, space.Discrete{2})

	s := space.PlayerVec{Vec: space.Vec{Disc: []int{2, 1},
		Cont: []float64{1}}}
	input, err := d.EncodeInput(s)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, input, 1e-12)

	_, err = d.EncodeInput(state(1))
	assert.ErrorIs(t, err, space.ErrDimensionMismatch)
}

func TestNotInitialized(t *testing.T) {
	d, err := New[space.PlayerVec, space.Vec](DefaultConfig(), 1)
	require.NoError(t, err)

	_, err = d.Act(state(0))
	assert.Error(t, err)
	_, err = d.Predict(state(0))
	assert.Error(t, err)
	assert.Error(t, d.Learn(transition{}))
	_, err = json.Marshal(d)
	assert.Error(t, err)
}

func TestPredictMatchesValues(t *testing.T) {
	d := newAgent(t, smallConfig(), space.Discrete{5}, space.Discrete{2, 3})

	for s := 0; s < 5; s++ {
		values, err := d.Values(state(s))
		require.NoError(t, err)

		best := 0
		for i, v := range values {
			if v > values[best] {
				best = i
			}
		}

		a, err := d.Predict(state(s))
		require.NoError(t, err)
		assert.Equal(t, []int{best / 3, best % 3}, a.Disc)

		// No exploration means acting is greedy
		d.behaviour.SetEpsilon(0)
		acted, err := d.Act(state(s))
		require.NoError(t, err)
		assert.Equal(t, a, acted)
	}
}

func TestLearnWaitsForBatch(t *testing.T) {
	d := newAgent(t, smallConfig(), space.Discrete{3}, space.Discrete{2})
	before := mat.DenseCopyOf(d.Network().Layers()[0].Weights)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Learn(transition{
			State: state(i), Action: action(1), Reward: 1, Terminal: true,
		}))
	}
	assert.Equal(t, 3, d.Memory().Len())
	assert.Equal(t, 0, d.GradientSteps())
	assert.True(t, mat.Equal(before, d.Network().Layers()[0].Weights))

	require.NoError(t, d.Learn(transition{
		State: state(0), Action: action(0), Reward: 1, NextState: state(1),
	}))
	assert.Equal(t, 1, d.GradientSteps())
	assert.False(t, mat.Equal(before, d.Network().Layers()[0].Weights))
	assert.Len(t, d.Network().History(), 4)
}

func TestTargetSync(t *testing.T) {
	c := smallConfig()
	c.BatchSize = 1
	c.TargetUpdateInterval = 2
	d := newAgent(t, c, space.Discrete{3}, space.Discrete{2})

	learn := func() {
		require.NoError(t, d.Learn(transition{
			State: state(0), Action: action(1), Reward: 1, Terminal: true,
		}))
	}
	synced := func() bool {
		for i, layer := range d.Network().Layers() {
			if !mat.Equal(layer.Weights,
				d.TargetNetwork().Layers()[i].Weights) {
				return false
			}
		}
		return true
	}

	learn()
	assert.False(t, synced())
	learn()
	assert.True(t, synced())
	learn()
	assert.False(t, synced())
}

func TestLearnErrors(t *testing.T) {
	d := newAgent(t, smallConfig(), space.Discrete{3}, space.Discrete{2})

	err := d.Learn(transition{State: state(0), Action: action(2),
		Terminal: true})
	assert.ErrorIs(t, err, space.ErrOutOfBounds)

	err = d.Learn(transition{State: state(0), Action: action(0),
		NextState: state()})
	assert.ErrorIs(t, err, space.ErrDimensionMismatch)
	assert.Equal(t, 0, d.Memory().Len())
}

// TestLearnBandit trains on a two-armed contextual bandit in which the
// rewarding arm equals the state
func TestLearnBandit(t *testing.T) {
	c := smallConfig()
	c.Hidden = 16
	c.TargetUpdateInterval = 10
	d := newAgent(t, c, space.Discrete{2}, space.Discrete{2})

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 3000; i++ {
		s, a := rng.Intn(2), rng.Intn(2)
		reward := 0.0
		if s == a {
			reward = 1.0
		}
		require.NoError(t, d.Learn(transition{
			State: state(s), Action: action(a), Reward: reward,
			Terminal: true,
		}))
	}

	for s := 0; s < 2; s++ {
		a, err := d.Predict(state(s))
		require.NoError(t, err)
		assert.Equal(t, []int{s}, a.Disc, "state %v", s)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := smallConfig()
	c.BatchSize = 1
	d := newAgent(t, c, space.Discrete{3}, space.Discrete{2})
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Learn(transition{
			State: state(i % 3), Action: action(1), Reward: 1, Terminal: true,
		}))
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	loaded, err := New[space.PlayerVec, space.Vec](DefaultConfig(), 3)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, loaded))

	assert.Equal(t, d.Config(), loaded.Config())
	assert.Equal(t, d.GradientSteps(), loaded.GradientSteps())
	assert.Equal(t, 0, loaded.Memory().Len())
	for i, layer := range d.Network().Layers() {
		assert.True(t, mat.Equal(layer.Weights,
			loaded.Network().Layers()[i].Weights))
		assert.True(t, mat.Equal(layer.Biases,
			loaded.Network().Layers()[i].Biases))
		assert.True(t, mat.Equal(d.TargetNetwork().Layers()[i].Weights,
			loaded.TargetNetwork().Layers()[i].Weights))
	}

	for s := 0; s < 3; s++ {
		want, err := d.Predict(state(s))
		require.NoError(t, err)
		got, err := loaded.Predict(state(s))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Error(t, json.Unmarshal([]byte(`{"config": {}}`), loaded))

	// Saved states which cannot be scaled to [0, 1]
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	fields["state_sizes"] = []int{0}
	corrupt, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.Error(t, json.Unmarshal(corrupt, loaded))
}
