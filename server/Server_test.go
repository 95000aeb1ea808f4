package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samuelfneumann/gorl/agent/qlearning"
	"github.com/samuelfneumann/gorl/environment/gridworld"
	"github.com/samuelfneumann/gorl/environment/tictactoe"
	"github.com/samuelfneumann/gorl/timestep"
	"github.com/samuelfneumann/gorl/utils/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// failing is a predictor which always fails
type failing struct{}

func (failing) Predict(tictactoe.Board) (tictactoe.Move, error) {
	return tictactoe.Move{}, errors.New("no prediction")
}

// gridAgent returns a tabular agent which has learned to move right
// from the top left corner
func gridAgent(t *testing.T, env *gridworld.GridWorld) *qlearning.QLearning[
	gridworld.Position, gridworld.Direction] {
	t.Helper()
	q, err := qlearning.New[gridworld.Position, gridworld.Direction](
		qlearning.DefaultConfig(), 1)
	require.NoError(t, err)
	require.True(t, q.Init(env))

	require.NoError(t, q.Learn(timestep.Transition[gridworld.Position,
		gridworld.Direction]{
		State:    gridworld.Position{Row: 0, Col: 0},
		Action:   gridworld.Right,
		Reward:   10,
		Terminal: true,
	}))
	return q
}

func newServer(t *testing.T) *Server {
	t.Helper()
	env, err := gridworld.New(3, 3, 1)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	s := New(logging.Discard(), reg)
	Register[gridworld.Position, gridworld.Direction](s, "grid",
		env.StateSpace(), gridAgent(t, env), true)
	Register[tictactoe.Board, tictactoe.Move](s, "tictactoe",
		tictactoe.States, failing{}, false)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func predictPath(env, state string) string {
	return "/predict/" + env + "/" + url.PathEscape(state)
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	w := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestPredict(t *testing.T) {
	s := newServer(t)

	w := get(s, predictPath("grid", `{"row":0,"col":0}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d gridworld.Direction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, gridworld.Right, d)
}

func TestPredictErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown env", predictPath("chess", `{}`), http.StatusNotFound},
		{"malformed", predictPath("grid", `{"row":`), http.StatusBadRequest},
		{"out of grid", predictPath("grid", `{"row":3,"col":0}`),
			http.StatusBadRequest},
		{"negative", predictPath("grid", `{"row":-1,"col":0}`),
			http.StatusBadRequest},
		{"wrong player", predictPath("tictactoe",
			`{"cells":[[0,0,0],[0,0,0],[0,0,0]],"player":1}`),
			http.StatusBadRequest},
		{"bad cell", predictPath("tictactoe",
			`{"cells":[[5,0,0],[0,0,0],[0,0,0]],"player":0}`),
			http.StatusBadRequest},
		{"predict fails", predictPath("tictactoe",
			`{"cells":[[1,0,0],[0,0,0],[0,0,0]],"player":1}`),
			http.StatusUnprocessableEntity},
	}
	for _, test := range tests {
		w := get(s, test.path)
		assert.Equal(t, test.status, w.Code, test.name)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), test.name)
		assert.NotEmpty(t, resp.Error, test.name)
	}
}

func TestPredictAll(t *testing.T) {
	s := newServer(t)

	w := get(s, "/predict_all/grid")
	require.Equal(t, http.StatusOK, w.Code)

	var decisions []struct {
		State  gridworld.Position  `json:"state"`
		Action gridworld.Direction `json:"action"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decisions))
	require.Len(t, decisions, 9)
	assert.Equal(t, gridworld.Position{Row: 0, Col: 0}, decisions[0].State)
	assert.Equal(t, gridworld.Right, decisions[0].Action)
	assert.Equal(t, gridworld.Position{Row: 0, Col: 1}, decisions[1].State)
	assert.Equal(t, gridworld.Up, decisions[1].Action)

	assert.Equal(t, http.StatusNotFound, get(s, "/predict_all/tictactoe").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/predict_all/chess").Code)
}

func TestMetrics(t *testing.T) {
	s := newServer(t)
	get(s, predictPath("grid", `{"row":0,"col":0}`))
	get(s, predictPath("chess", `{}`))

	w := get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body,
		`gorl_server_predict_requests_total{env="grid",status="200"} 1`)
	assert.Contains(t, body,
		`gorl_server_predict_requests_total{env="chess",status="404"} 1`)
}

func TestConcurrentPredict(t *testing.T) {
	s := newServer(t)

	var wg sync.WaitGroup
	codes := make([]int, 32)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = get(s, predictPath("grid", `{"row":0,"col":0}`)).Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}
