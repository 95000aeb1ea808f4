package qlearning

import (
	"github.com/samuelfneumann/gorl/agent"
)

func init() {
	// Register the Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.QLearning, DefaultConfig())
}

// Config represents a configuration for the QLearning agent
type Config struct {
	Epsilon      float64 `json:"epsilon" validate:"gte=0,lte=1"`
	LearningRate float64 `json:"learning_rate" validate:"gt=0,lte=1"`
	Discount     float64 `json:"discount" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		Epsilon:      0.05,
		LearningRate: 0.1,
		Discount:     0.9,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	return agent.ValidateStruct(c)
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.QLearning
}
