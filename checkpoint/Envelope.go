// Package checkpoint implements the persistence of agents. Agents are
// stored as JSON wrapped in an envelope recording the agent's type, so
// that data is never loaded into the wrong kind of agent.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samuelfneumann/gorl/agent"
)

var (
	// ErrTypeMismatch is returned when stored data holds an agent of a
	// different type than the one it is loaded into
	ErrTypeMismatch = errors.New("agent type mismatch")

	// ErrNotFound is returned when a Store holds no agent with a name
	ErrNotFound = errors.New("agent not found")
)

type envelope struct {
	Type  agent.Type      `json:"type"`
	Agent json.RawMessage `json:"agent"`
}

// Encode returns the enveloped JSON encoding of a
func Encode(a agent.Typed) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return json.Marshal(envelope{Type: a.Type(), Agent: data})
}

// Decode decodes the enveloped JSON data into a. If data holds an
// agent of another type, ErrTypeMismatch is returned.
func Decode(data []byte, a agent.Typed) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if env.Type != a.Type() {
		return fmt.Errorf("decode: stored %q, loading %q: %w", env.Type,
			a.Type(), ErrTypeMismatch)
	}
	if len(env.Agent) == 0 {
		return fmt.Errorf("decode: envelope holds no agent")
	}

	if err := json.Unmarshal(env.Agent, a); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
