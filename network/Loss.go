package network

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/samuelfneumann/gorl/utils/floatutils"
)

// epsilon keeps predictions away from 0 and 1 before taking logs
const epsilon = 1e-10

type lossType string

const (
	mse lossType = "mse"
	bce lossType = "bce"
)

// Loss represents a loss function between predictions and targets
type Loss struct {
	lossType
}

// MSE returns the mean squared error Loss
func MSE() *Loss {
	return &Loss{mse}
}

// BCE returns the binary cross-entropy Loss. Targets are expected to be
// either 0 or 1, and any target other than 1 is treated as 0.
func BCE() *Loss {
	return &Loss{bce}
}

// LossByName returns the Loss with the given name
func LossByName(name string) (*Loss, error) {
	switch lossType(name) {
	case mse:
		return MSE(), nil
	case bce:
		return BCE(), nil
	default:
		return nil, fmt.Errorf("illegal Loss type %q", name)
	}
}

// String implements the Stringer interface
func (l *Loss) String() string {
	return string(l.lossType)
}

// Loss returns the scalar loss between predicted and target
func (l *Loss) Loss(predicted, target []float64) float64 {
	n := float64(len(predicted))
	total := 0.0

	switch l.lossType {
	case bce:
		for i, p := range predicted {
			p = floatutils.Clip(p, epsilon, 1-epsilon)
			if target[i] == 1 {
				total -= math.Log(p)
			} else {
				total -= math.Log(1 - p)
			}
		}
	default:
		for i, p := range predicted {
			diff := p - target[i]
			total += diff * diff
		}
	}
	return total / n
}

// Gradient returns the gradient of the loss with respect to each
// prediction. The mean squared error gradient omits the constant
// factor of 2.
func (l *Loss) Gradient(predicted, target []float64) []float64 {
	n := float64(len(predicted))
	grad := make([]float64, len(predicted))

	switch l.lossType {
	case bce:
		for i, p := range predicted {
			p = floatutils.Clip(p, epsilon, 1-epsilon)
			if target[i] == 1 {
				grad[i] = 1 / p
			} else {
				grad[i] = -1 / (1 - p)
			}
		}
	default:
		for i, p := range predicted {
			grad[i] = (p - target[i]) / n
		}
	}
	return grad
}

// MarshalJSON implements the json.Marshaler interface
func (l *Loss) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(l.lossType))
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (l *Loss) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	decoded, err := LossByName(name)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	*l = *decoded
	return nil
}
