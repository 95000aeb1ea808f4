// Package metrics implements Prometheus collectors which observe
// training runs
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samuelfneumann/gorl/timestep"
)

const namespace = "gorl"

// Metrics holds the training collectors of one registry. Every
// collector is labelled by run so that parallel runs can share a
// registry.
type Metrics struct {
	episodes    *prometheus.CounterVec
	steps       *prometheus.CounterVec
	returns     *prometheus.HistogramVec
	learnErrors *prometheus.CounterVec
}

// New registers the training collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		episodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "episodes_total",
			Help:      "Total episodes completed",
		}, []string{"run"}),

		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "steps_total",
			Help:      "Total environment steps taken",
		}, []string{"run"}),

		// Labels: run, player (index of the player in turn order)
		returns: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "episode_return",
			Help:      "Distribution of episodic returns per player",
			Buckets:   []float64{-10, -1, -0.5, 0, 0.5, 1, 2, 5, 10, 100},
		}, []string{"run", "player"}),

		learnErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "training",
			Name:      "learn_errors_total",
			Help:      "Total transitions an agent failed to learn from",
		}, []string{"run", "player"}),
	}
}

// ObserveEpisode records a finished episode of run
func (m *Metrics) ObserveEpisode(run string, e timestep.Episode) {
	m.episodes.WithLabelValues(run).Inc()
	m.steps.WithLabelValues(run).Add(float64(e.Steps))
	for player, ret := range e.Returns {
		m.returns.WithLabelValues(run, strconv.Itoa(player)).Observe(ret)
	}
}

// LearnError records a failed update of player in run
func (m *Metrics) LearnError(run string, player int) {
	m.learnErrors.WithLabelValues(run, strconv.Itoa(player)).Inc()
}
