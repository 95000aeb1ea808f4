package network

import (
	"encoding/json"
	"fmt"
	"math"
)

type activationType string

const (
	relu    activationType = "relu"
	sigmoid activationType = "sigmoid"
	tanh    activationType = "tanh"
	linear  activationType = "linear"
)

// Activation represents an activation function type. The derivative of
// an Activation is computed from the activated value rather than from
// the pre-activation sum.
type Activation struct {
	activationType
	f  func(x float64) float64
	df func(activated float64) float64
}

// Fwd applies the activation function
func (a *Activation) Fwd(x float64) float64 {
	return a.f(x)
}

// Derivative returns the derivative of the activation function at the
// point which produced the activated value
func (a *Activation) Derivative(activated float64) float64 {
	return a.df(activated)
}

// String implements the Stringer interface
func (a *Activation) String() string {
	return string(a.activationType)
}

// IsLinear returns whether or not the Activation is the identity
// function.
func (a *Activation) IsLinear() bool {
	return a.activationType == linear
}

// MarshalJSON implements the json.Marshaler interface
func (a *Activation) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a.activationType))
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (a *Activation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	decoded, err := ActivationByName(name)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	*a = *decoded
	return nil
}

// GobEncode implements the GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.activationType), nil
}

// GobDecode implements the GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	decoded, err := ActivationByName(string(encoded))
	if err != nil {
		return fmt.Errorf("gobdecode: %w", err)
	}
	*a = *decoded
	return nil
}

// ActivationByName returns the Activation with the given name
func ActivationByName(name string) (*Activation, error) {
	switch activationType(name) {
	case relu:
		return ReLU(), nil
	case sigmoid:
		return Sigmoid(), nil
	case tanh:
		return TanH(), nil
	case linear:
		return Linear(), nil
	default:
		return nil, fmt.Errorf("illegal Activation type %q", name)
	}
}

// ReLU returns a ReLU *Activation
func ReLU() *Activation {
	return &Activation{
		activationType: relu,
		f: func(x float64) float64 {
			return math.Max(0, x)
		},
		df: func(a float64) float64 {
			if a > 0 {
				return 1
			}
			return 0
		},
	}
}

// Sigmoid returns a logistic sigmoid *Activation
func Sigmoid() *Activation {
	return &Activation{
		activationType: sigmoid,
		f: func(x float64) float64 {
			return 1 / (1 + math.Exp(-x))
		},
		df: func(a float64) float64 {
			return a * (1 - a)
		},
	}
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{
		activationType: tanh,
		f:              math.Tanh,
		df: func(a float64) float64 {
			return 1 - a*a
		},
	}
}

// Linear returns an identity *Activation
func Linear() *Activation {
	return &Activation{
		activationType: linear,
		f: func(x float64) float64 {
			return x
		},
		df: func(float64) float64 {
			return 1
		},
	}
}
