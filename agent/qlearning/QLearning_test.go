package qlearning

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/gorl/environment/tictactoe"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

type qAgent = QLearning[space.PlayerVec, space.Vec]

func newAgent(t *testing.T, c Config, states, actions space.Space) *qAgent {
	t.Helper()
	q, err := New[space.PlayerVec, space.Vec](c, 1)
	require.NoError(t, err)
	require.True(t, q.Init(spaceEnv{states, actions}))
	return q
}

func state(v ...int) space.PlayerVec {
	return space.PlayerVec{Vec: space.Vec{Disc: v}}
}

func action(v ...int) space.Vec {
	return space.Vec{Disc: v}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []Config{
		{Epsilon: -0.1, LearningRate: 0.1, Discount: 0.9},
		{Epsilon: 0.1, LearningRate: 0, Discount: 0.9},
		{Epsilon: 0.1, LearningRate: 0.1, Discount: 1.5},
	}
	for _, c := range tests {
		assert.Error(t, c.Validate(), "%+v", c)
		_, err := New[space.PlayerVec, space.Vec](c, 1)
		assert.Error(t, err)
	}
}

func TestInit(t *testing.T) {
	q, err := New[space.PlayerVec, space.Vec](DefaultConfig(), 1)
	require.NoError(t, err)

	continuous := space.Box{Bounds: []r1.Interval{{Min: 0, Max: 1}}}
	assert.False(t, q.Init(spaceEnv{continuous, space.Discrete{2}}))
	assert.False(t, q.Init(spaceEnv{space.Discrete{2}, continuous}))

	assert.True(t, q.Init(spaceEnv{space.Discrete{3, 3}, space.Discrete{4}}))
	assert.Len(t, q.QTable(), 36)
	assert.Equal(t, space.Discrete{3, 3}, q.States())

	// The table is never resized
	assert.True(t, q.Init(spaceEnv{space.Discrete{3, 3}, space.Discrete{4}}))
	assert.False(t, q.Init(spaceEnv{space.Discrete{4, 4}, space.Discrete{4}}))
	assert.Len(t, q.QTable(), 36)
}

func TestNotInitialized(t *testing.T) {
	q, err := New[space.PlayerVec, space.Vec](DefaultConfig(), 1)
	require.NoError(t, err)

	_, err = q.Act(state(0))
	assert.Error(t, err)
	_, err = q.Predict(state(0))
	assert.Error(t, err)
	assert.Error(t, q.Learn(timestep.Transition[space.PlayerVec, space.Vec]{}))
}

func TestPredictTieBreak(t *testing.T) {
	q := newAgent(t, DefaultConfig(), space.Discrete{2}, space.Discrete{3, 3})

	a, err := q.Predict(state(0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, a.Disc)

	// Actions (1, 2) and (2, 0) have equal values, (1, 2) is enumerated
	// first
	q.table[5] = 1
	q.table[6] = 1
	a, err = q.Predict(state(0))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, a.Disc)

	// Other states are unaffected
	a, err = q.Predict(state(1))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, a.Disc)
}

func TestLearn(t *testing.T) {
	c := Config{Epsilon: 0, LearningRate: 0.5, Discount: 0.9}
	q := newAgent(t, c, space.Discrete{3}, space.Discrete{2})

	// Terminal update ignores the next state
	require.NoError(t, q.Learn(timestep.Transition[space.PlayerVec, space.Vec]{
		State:    state(2),
		Action:   action(1),
		Reward:   1,
		Terminal: true,
	}))
	values, err := q.Values(state(2))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5}, values, 1e-12)

	// Bootstraps from the best action of the next state
	require.NoError(t, q.Learn(timestep.Transition[space.PlayerVec, space.Vec]{
		State:     state(0),
		Action:    action(0),
		Reward:    2,
		NextState: state(2),
	}))
	values, err = q.Values(state(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5*(2+0.9*0.5), values[0], 1e-12)

	a, err := q.Act(state(0))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, a.Disc)
}

func TestLearnErrors(t *testing.T) {
	q := newAgent(t, DefaultConfig(), space.Discrete{3}, space.Discrete{2})

	err := q.Learn(timestep.Transition[space.PlayerVec, space.Vec]{
		State: state(3), Action: action(0), Terminal: true,
	})
	assert.ErrorIs(t, err, space.ErrOutOfBounds)

	err = q.Learn(timestep.Transition[space.PlayerVec, space.Vec]{
		State: state(0), Action: action(0, 1), Terminal: true,
	})
	assert.ErrorIs(t, err, space.ErrDimensionMismatch)

	_, err = q.Predict(state(0, 0))
	assert.ErrorIs(t, err, space.ErrDimensionMismatch)
}

func TestActExplores(t *testing.T) {
	c := Config{Epsilon: 1, LearningRate: 0.1, Discount: 0.9}
	q := newAgent(t, c, space.Discrete{1}, space.Discrete{2, 2})

	seen := make(map[[2]int]bool)
	for i := 0; i < 200; i++ {
		a, err := q.Act(state(0))
		require.NoError(t, err)
		seen[[2]int{a.Disc[0], a.Disc[1]}] = true
	}
	assert.Len(t, seen, 4)
}

func TestJSONRoundTrip(t *testing.T) {
	q := newAgent(t, DefaultConfig(), space.Discrete{2, 2}, space.Discrete{3})
	for i := range q.table {
		q.table[i] = float64(i) / 3
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	loaded, err := New[space.PlayerVec, space.Vec](Config{
		Epsilon: 1, LearningRate: 1, Discount: 1}, 2)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, loaded))

	assert.Equal(t, q.QTable(), loaded.QTable())
	assert.Equal(t, q.Config(), loaded.Config())
	assert.Equal(t, q.Config().Epsilon, loaded.behaviour.Epsilon())

	a, err := loaded.Predict(state(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, a.Disc)

	assert.Error(t, json.Unmarshal([]byte(`{"config": {"epsilon": 0.1, `+
		`"learning_rate": 0.1, "discount": 0.9}, "state_sizes": [2], `+
		`"action_sizes": [2], "table": [0]}`), loaded))
	assert.Error(t, json.Unmarshal([]byte(`{"table": "x"}`), loaded))
}

func TestPredictAllTicTacToe(t *testing.T) {
	q, err := New[tictactoe.Board, tictactoe.Move](DefaultConfig(), 1)
	require.NoError(t, err)
	require.True(t, q.Init(tictactoe.New()))

	decisions, err := q.PredictAll()
	require.NoError(t, err)

	// Boards with impossible mark counts are skipped
	assert.Less(t, len(decisions), space.Size(space.DiscreteDims(
		tictactoe.States)))
	assert.NotEmpty(t, decisions)
	for _, d := range decisions {
		assert.Equal(t, tictactoe.Move{}, d.Action)
	}
}
