// Package server implements a read-only HTTP façade over trained
// agents. Handlers only call Predict, so agents are shared between
// concurrent requests without locking.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samuelfneumann/gorl/space"
	"github.com/sirupsen/logrus"
)

// Predictor selects the greedy action of a state
type Predictor[S, A any] interface {
	Predict(state S) (A, error)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// Decision is a state together with the action predicted in it
type Decision struct {
	State  any `json:"state"`
	Action any `json:"action"`
}

// errBadState is returned by an endpoint when the requested state is
// malformed or not in the state space
var errBadState = errors.New("bad state")

// endpoint serves predictions for one environment
type endpoint struct {
	predict    func(raw string) (any, error)
	predictAll func() ([]Decision, error)
}

// Server serves the predictions of agents trained on named
// environments
type Server struct {
	engine    *gin.Engine
	endpoints map[string]endpoint
	log       logrus.FieldLogger
	requests  *prometheus.CounterVec
}

// New returns a new Server with no environments. Request metrics are
// registered with reg and served at /metrics.
func New(log logrus.FieldLogger, reg *prometheus.Registry) *Server {
	s := &Server{
		engine:    gin.New(),
		endpoints: make(map[string]endpoint),
		log:       log,
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorl",
			Subsystem: "server",
			Name:      "predict_requests_total",
			Help:      "Total prediction requests by environment and status",
		}, []string{"env", "status"}),
	}

	s.engine.Use(gin.Recovery(), s.logRequests)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg,
		promhttp.HandlerOpts{})))
	s.engine.GET("/predict/:env/:state", s.handlePredict)
	s.engine.GET("/predict_all/:env", s.handlePredictAll)
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// State is a state which can be served. States are decoded from JSON
// and must equal the state rebuilt from their own values, which
// rejects states that are inconsistent, such as a tic-tac-toe board
// with the wrong player to move.
type State[S any] interface {
	space.StateBuilder[S]
	comparable
}

// Register serves the predictions of p for states of states under the
// name env. If all is true, the predictions of every state of the
// discrete space states are also served.
func Register[S State[S], A any](s *Server, env string,
	states space.Space, p Predictor[S, A], all bool) {
	e := endpoint{
		predict: func(raw string) (any, error) {
			var state S
			if err := json.Unmarshal([]byte(raw), &state); err != nil {
				return nil, fmt.Errorf("%w: %v", errBadState, err)
			}
			if err := check(state, states); err != nil {
				return nil, err
			}

			action, err := p.Predict(state)
			if err != nil {
				return nil, err
			}
			return action, nil
		},
	}

	if all {
		e.predictAll = func() ([]Decision, error) {
			return predictAll(states, p)
		}
	}
	s.endpoints[env] = e
}

// check returns an error if state is not a consistent element of states
func check[S State[S]](state S, states space.Space) error {
	if !space.IsValid(state, states) {
		return fmt.Errorf("%w: %v is not in the state space", errBadState,
			state)
	}

	discrete, continuous := space.Values(state)
	rebuilt, err := space.TryBuild[S](states, discrete, continuous)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadState, err)
	}
	if rebuilt != state {
		return fmt.Errorf("%w: %v is inconsistent", errBadState, state)
	}
	return nil
}

// predictAll predicts the action of every state of a discrete space
func predictAll[S State[S], A any](states space.Space,
	p Predictor[S, A]) ([]Decision, error) {
	if len(space.ContinuousDims(states)) > 0 {
		return nil, fmt.Errorf("predictAll: state space is not discrete")
	}

	sizes := space.DiscreteDims(states)
	var decisions []Decision
	odo := space.NewOdometer(sizes)
	for v, ok := odo.Next(); ok; v, ok = odo.Next() {
		state, err := space.TryBuild[S](states, v, nil)
		if err != nil {
			continue
		}
		action, err := p.Predict(state)
		if err != nil {
			return nil, fmt.Errorf("predictAll: %w", err)
		}
		decisions = append(decisions, Decision{State: state, Action: action})
	}
	return decisions, nil
}

func (s *Server) handlePredict(c *gin.Context) {
	env := c.Param("env")
	e, ok := s.endpoints[env]
	if !ok {
		s.fail(c, env, http.StatusNotFound,
			fmt.Errorf("unknown environment %q", env))
		return
	}

	action, err := e.predict(c.Param("state"))
	switch {
	case errors.Is(err, errBadState):
		s.fail(c, env, http.StatusBadRequest, err)
		return
	case err != nil:
		s.fail(c, env, http.StatusUnprocessableEntity, err)
		return
	}

	s.requests.WithLabelValues(env, strconv.Itoa(http.StatusOK)).Inc()
	c.JSON(http.StatusOK, action)
}

func (s *Server) handlePredictAll(c *gin.Context) {
	env := c.Param("env")
	e, ok := s.endpoints[env]
	if !ok || e.predictAll == nil {
		s.fail(c, env, http.StatusNotFound,
			fmt.Errorf("no state enumeration for environment %q", env))
		return
	}

	decisions, err := e.predictAll()
	if err != nil {
		s.fail(c, env, http.StatusUnprocessableEntity, err)
		return
	}

	s.requests.WithLabelValues(env, strconv.Itoa(http.StatusOK)).Inc()
	c.JSON(http.StatusOK, decisions)
}

// fail responds to a failed request
func (s *Server) fail(c *gin.Context, env string, status int, err error) {
	s.requests.WithLabelValues(env, strconv.Itoa(status)).Inc()
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// logRequests logs every request once it has been served
func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.log.WithFields(logrus.Fields{
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"status":   c.Writer.Status(),
		"duration": time.Since(start),
	}).Debug("request served")
}
