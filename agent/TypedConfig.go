package agent

import (
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Type represents a type of an agent. For example QLearning or DeepQ.
type Type string

const (
	QLearning Type = "QLearning"
	DeepQ     Type = "DeepQ"
	Random    Type = "Random"
)

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be unmarshalled.
//
// Each agent package registers its own Config in an init function to
// avoid circular imports.
var registeredTypes = make(map[Type]Config)

// Register registers an agent's Type with a concrete Config so that
// upon deserialization of a TypedConfig, the config is deserialized into
// the concrete Config type. Fields missing from serialized configs take
// their values from defaults.
func Register(agent Type, defaults Config) {
	registeredTypes[agent] = defaults
}

// TypedConfig wraps a Config to enable a Config to be JSON or YAML
// unmarshalled into its underlying concrete type
type TypedConfig struct {
	Type   Type   `json:"type" yaml:"type"`
	Config Config `json:"config" yaml:"config"`
}

// NewTypedConfig returns a new TypedConfig wrapping c
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

type rawTypedConfig struct {
	Type   Type            `json:"type"`
	Config json.RawMessage `json:"config"`
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var raw rawTypedConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	defaults, found := registeredTypes[raw.Type]
	if !found {
		return fmt.Errorf("unmarshalJSON: unregistered agent type %q",
			raw.Type)
	}

	value := reflect.New(reflect.TypeOf(defaults))
	value.Elem().Set(reflect.ValueOf(defaults))
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
			return fmt.Errorf("unmarshalJSON: %w", err)
		}
	}

	t.Type = raw.Type
	t.Config = value.Elem().Interface().(Config)
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface. The config
// is decoded through its JSON representation, so the same field names
// are used in both formats.
func (t *TypedConfig) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]interface{}
	if err := value.Decode(&m); err != nil {
		return fmt.Errorf("unmarshalYAML: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("unmarshalYAML: %w", err)
	}
	return t.UnmarshalJSON(data)
}

// Validate validates the wrapped Config
func (t TypedConfig) Validate() error {
	if t.Config == nil {
		return fmt.Errorf("validate: no config for agent type %q", t.Type)
	}
	if t.Config.Type() != t.Type {
		return fmt.Errorf("validate: config of type %q labelled as %q",
			t.Config.Type(), t.Type)
	}
	return t.Config.Validate()
}
