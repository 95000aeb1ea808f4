package deepq

import (
	"github.com/samuelfneumann/gorl/agent"
)

func init() {
	// Register the Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.DeepQ, DefaultConfig())
}

// Config implements a configuration for a DeepQ agent
type Config struct {
	Epsilon      float64 `json:"epsilon" validate:"gte=0,lte=1"`
	LearningRate float64 `json:"learning_rate" validate:"gt=0"`
	Discount     float64 `json:"discount" validate:"gte=0,lte=1"`

	// Width of the single hidden layer
	Hidden int `json:"hidden" validate:"gte=1"`

	// Experience replay parameters
	BatchSize int `json:"batch_size" validate:"gte=1,ltefield=Capacity"`
	Capacity  int `json:"capacity" validate:"gte=1"`

	// Target net updates
	Tau                  float64 `json:"tau" validate:"gt=0,lte=1"`
	TargetUpdateInterval int     `json:"target_update_interval" validate:"gte=1"`
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		Epsilon:              0.05,
		LearningRate:         0.1,
		Discount:             0.9,
		Hidden:               64,
		BatchSize:            32,
		Capacity:             10_000,
		Tau:                  1.0,
		TargetUpdateInterval: 100,
	}
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent.
func (c Config) Validate() error {
	return agent.ValidateStruct(c)
}

// Type returns the type of the configuration
func (c Config) Type() agent.Type {
	return agent.DeepQ
}
