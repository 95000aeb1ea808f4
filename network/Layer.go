package network

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Layer implements a fully connected layer of a feed forward neural
// network. Weights has one row per output and one column per input.
type Layer struct {
	Weights *mat.Dense
	Biases  *mat.VecDense
}

// NewLayer returns a new Layer with in inputs and out outputs. Weights
// are sampled uniformly from [-1, 1) using src and biases are zero.
func NewLayer(in, out int, src rand.Source) *Layer {
	dist := distuv.Uniform{Min: -1, Max: 1, Src: src}

	weights := make([]float64, in*out)
	for i := range weights {
		weights[i] = dist.Rand()
	}

	return &Layer{
		Weights: mat.NewDense(out, in, weights),
		Biases:  mat.NewVecDense(out, nil),
	}
}

// Dims returns the number of inputs and outputs of the layer
func (l *Layer) Dims() (in, out int) {
	out, in = l.Weights.Dims()
	return in, out
}

// fwd computes the activated output of the layer for input x
func (l *Layer) fwd(x mat.Vector, act *Activation) *mat.VecDense {
	_, out := l.Dims()
	z := mat.NewVecDense(out, nil)
	z.MulVec(l.Weights, x)
	z.AddVec(z, l.Biases)

	for i := 0; i < out; i++ {
		z.SetVec(i, act.Fwd(z.AtVec(i)))
	}
	return z
}

// clone returns a deep copy of the layer
func (l *Layer) clone() *Layer {
	return &Layer{
		Weights: mat.DenseCopyOf(l.Weights),
		Biases:  mat.VecDenseCopyOf(l.Biases),
	}
}

type layerJSON struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// MarshalJSON implements the json.Marshaler interface
func (l *Layer) MarshalJSON() ([]byte, error) {
	rows, _ := l.Weights.Dims()
	weights := make([][]float64, rows)
	for i := range weights {
		weights[i] = mat.Row(nil, i, l.Weights)
	}

	return json.Marshal(layerJSON{
		Weights: weights,
		Biases:  mat.Col(nil, 0, l.Biases),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (l *Layer) UnmarshalJSON(data []byte) error {
	var decoded layerJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	out := len(decoded.Weights)
	if out == 0 || len(decoded.Biases) != out {
		return fmt.Errorf("unmarshalJSON: layer has %v weight rows and %v "+
			"biases", out, len(decoded.Biases))
	}

	in := len(decoded.Weights[0])
	if in == 0 {
		return fmt.Errorf("unmarshalJSON: layer has no inputs")
	}
	weights := make([]float64, 0, in*out)
	for i, row := range decoded.Weights {
		if len(row) != in {
			return fmt.Errorf("unmarshalJSON: weight row %v has %v "+
				"columns, expected %v", i, len(row), in)
		}
		weights = append(weights, row...)
	}

	l.Weights = mat.NewDense(out, in, weights)
	l.Biases = mat.NewVecDense(out, decoded.Biases)
	return nil
}
