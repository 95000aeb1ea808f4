package experiment

import (
	"github.com/samuelfneumann/gorl/checkpoint"
	"github.com/samuelfneumann/gorl/experiment/metrics"
	"github.com/samuelfneumann/gorl/experiment/trackers"
	"github.com/samuelfneumann/gorl/utils/logging"
	"github.com/samuelfneumann/gorl/utils/progressbar"
	"github.com/sirupsen/logrus"
)

// settings hold the observers of an experiment. None of them affect
// how training proceeds.
type settings struct {
	log           logrus.FieldLogger
	run           string
	stepLimit     int
	trackers      []trackers.Tracker
	metrics       *metrics.Metrics
	bar           *progressbar.ProgressBar
	checkpointers []checkpoint.Checkpointer
}

func defaultSettings() settings {
	return settings{log: logging.Discard()}
}

// Option configures an experiment
type Option func(*settings)

// WithLogger sets the logger of the experiment
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithRunID labels logs and metrics of the experiment with id
func WithRunID(id string) Option {
	return func(s *settings) {
		s.run = id
	}
}

// WithStepLimit truncates episodes after n environment steps. Players
// do not learn from the moves of a truncated episode which are still
// waiting for credit. A limit of 0 disables truncation.
func WithStepLimit(n int) Option {
	return func(s *settings) {
		s.stepLimit = n
	}
}

// WithTrackers adds trackers which are sent every finished episode
func WithTrackers(t ...trackers.Tracker) Option {
	return func(s *settings) {
		s.trackers = append(s.trackers, t...)
	}
}

// WithMetrics records every finished episode in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithProgressBar displays training progress on p
func WithProgressBar(p *progressbar.ProgressBar) Option {
	return func(s *settings) {
		s.bar = p
	}
}

// WithCheckpointers adds checkpointers which are called after every
// finished episode
func WithCheckpointers(c ...checkpoint.Checkpointer) Option {
	return func(s *settings) {
		s.checkpointers = append(s.checkpointers, c...)
	}
}
