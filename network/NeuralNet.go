// Package network implements a small feed forward neural network trained
// by stochastic gradient descent with hand-written backpropagation.
package network

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samuelfneumann/gorl/utils/floatutils"
	"github.com/samuelfneumann/gorl/utils/matutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// MaxGradient bounds the magnitude of every weight gradient element
const MaxGradient = 1.0

// NeuralNet is a fully connected feed forward neural network. Hidden
// layers use the hidden activation and the last layer uses the final
// activation.
type NeuralNet struct {
	layers       []*Layer
	learningRate float64
	hidden       *Activation
	final        *Activation
	loss         *Loss
	history      []float64

	src rand.Source
}

// New returns a new NeuralNet without any layers. Layer weights added
// with AddLayers are sampled from a source seeded with seed.
func New(learningRate float64, hidden, final *Activation, loss *Loss,
	seed uint64) *NeuralNet {
	return &NeuralNet{
		learningRate: learningRate,
		hidden:       hidden,
		final:        final,
		loss:         loss,
		src:          rand.NewSource(seed),
	}
}

// AddLayers appends len(sizes)-1 layers to the network, chaining
// consecutive widths in sizes. The first width must equal the output
// width of the network's current last layer.
func (n *NeuralNet) AddLayers(sizes []int) {
	if len(n.layers) > 0 && len(sizes) > 0 && sizes[0] != n.Outputs() {
		panic(fmt.Sprintf("addLayers: cannot chain layer with %v inputs "+
			"to layer with %v outputs", sizes[0], n.Outputs()))
	}

	for i := 0; i < len(sizes)-1; i++ {
		if sizes[i] < 1 || sizes[i+1] < 1 {
			panic(fmt.Sprintf("addLayers: layer widths must be positive, "+
				"got %v", sizes))
		}
		n.layers = append(n.layers, NewLayer(sizes[i], sizes[i+1], n.src))
	}
}

// Layers returns the layers of the network
func (n *NeuralNet) Layers() []*Layer {
	return n.layers
}

// Features returns the number of inputs to the network
func (n *NeuralNet) Features() int {
	if len(n.layers) == 0 {
		return 0
	}
	in, _ := n.layers[0].Dims()
	return in
}

// Outputs returns the number of outputs of the network
func (n *NeuralNet) Outputs() int {
	if len(n.layers) == 0 {
		return 0
	}
	_, out := n.layers[len(n.layers)-1].Dims()
	return out
}

// LearningRate returns the step size of the network
func (n *NeuralNet) LearningRate() float64 {
	return n.learningRate
}

// History returns the loss of each training example seen so far
func (n *NeuralNet) History() []float64 {
	return n.history
}

// SetWeights sets the weight from input in to output out of a layer
func (n *NeuralNet) SetWeights(layer, out, in int, value float64) {
	n.layers[layer].Weights.Set(out, in, value)
}

// SetBias sets the bias of output out of a layer
func (n *NeuralNet) SetBias(layer, out int, value float64) {
	n.layers[layer].Biases.SetVec(out, value)
}

// forward performs the forward pass. If cache is true, the input and the
// activated output of each layer are returned, otherwise only the final
// output is.
func (n *NeuralNet) forward(input []float64, cache bool) ([]*mat.VecDense,
	error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("forward: network has no layers")
	}
	if len(input) != n.Features() {
		return nil, fmt.Errorf("forward: expected %v inputs, got %v",
			n.Features(), len(input))
	}

	x := mat.NewVecDense(len(input), append([]float64(nil), input...))

	var activations []*mat.VecDense
	if cache {
		activations = make([]*mat.VecDense, 0, len(n.layers)+1)
		activations = append(activations, x)
	}

	for i, layer := range n.layers {
		act := n.hidden
		if i == len(n.layers)-1 {
			act = n.final
		}
		x = layer.fwd(x, act)

		if cache {
			activations = append(activations, x)
		}
	}

	if !cache {
		return []*mat.VecDense{x}, nil
	}
	return activations, nil
}

// Forward performs the training forward pass, returning the input
// followed by the activated output of every layer
func (n *NeuralNet) Forward(input []float64) ([][]float64, error) {
	activations, err := n.forward(input, true)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(activations))
	for i, a := range activations {
		out[i] = a.RawVector().Data
	}
	return out, nil
}

// Predict returns the output of the network for input
func (n *NeuralNet) Predict(input []float64) ([]float64, error) {
	out, err := n.forward(input, false)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return out[0].RawVector().Data, nil
}

// PredictBatch returns the output of the network for each input
func (n *NeuralNet) PredictBatch(inputs [][]float64) ([][]float64, error) {
	outputs := make([][]float64, len(inputs))
	for i, input := range inputs {
		out, err := n.Predict(input)
		if err != nil {
			return nil, fmt.Errorf("predictBatch: input %v: %w", i, err)
		}
		outputs[i] = out
	}
	return outputs, nil
}

// Train performs one step of stochastic gradient descent on each
// input-target pair in order, recording the loss of each pair in the
// network's history.
func (n *NeuralNet) Train(inputs, targets [][]float64) error {
	if len(inputs) != len(targets) {
		return fmt.Errorf("train: got %v inputs and %v targets",
			len(inputs), len(targets))
	}

	for i := range inputs {
		if len(targets[i]) != n.Outputs() {
			return fmt.Errorf("train: target %v has %v values, expected %v",
				i, len(targets[i]), n.Outputs())
		}

		activations, err := n.forward(inputs[i], true)
		if err != nil {
			return fmt.Errorf("train: input %v: %w", i, err)
		}
		n.backward(activations, targets[i])
	}
	return nil
}

// backward performs backpropagation given the cached activations of a
// forward pass. Each layer is updated before the error is propagated
// through its weights to the layer below.
func (n *NeuralNet) backward(activations []*mat.VecDense, target []float64) {
	output := activations[len(activations)-1].RawVector().Data
	n.history = append(n.history, n.loss.Loss(output, target))

	grad := n.loss.Gradient(output, target)
	for j, o := range output {
		grad[j] *= n.final.Derivative(o)
	}
	delta := mat.NewVecDense(len(grad), grad)

	for l := len(n.layers) - 1; l >= 0; l-- {
		layer := n.layers[l]
		prev := activations[l]

		var weightGrad mat.Dense
		weightGrad.Outer(1, delta, prev)
		weightGrad.Apply(func(_, _ int, v float64) float64 {
			return floatutils.Clip(v, -MaxGradient, MaxGradient)
		}, &weightGrad)

		weightGrad.Scale(n.learningRate, &weightGrad)
		layer.Weights.Sub(layer.Weights, &weightGrad)
		layer.Biases.AddScaledVec(layer.Biases, -n.learningRate, delta)

		if l == 0 {
			break
		}

		in, _ := layer.Dims()
		next := mat.NewVecDense(in, nil)
		next.MulVec(layer.Weights.T(), delta)
		for k := 0; k < in; k++ {
			next.SetVec(k, next.AtVec(k)*n.hidden.Derivative(prev.AtVec(k)))
		}
		delta = next
	}
}

// Clone returns a deep copy of the network, including its history.
// The clone samples any new layer weights from a source seeded with
// seed.
func (n *NeuralNet) Clone(seed uint64) *NeuralNet {
	layers := make([]*Layer, len(n.layers))
	for i := range n.layers {
		layers[i] = n.layers[i].clone()
	}

	return &NeuralNet{
		layers:       layers,
		learningRate: n.learningRate,
		hidden:       n.hidden,
		final:        n.final,
		loss:         n.loss,
		history:      append([]float64(nil), n.history...),
		src:          rand.NewSource(seed),
	}
}

// Set sets the weights of the network to be equal to the weights of
// another network with the same architecture
func (dest *NeuralNet) Set(source *NeuralNet) error {
	return dest.Polyak(source, 1.0)
}

// Polyak sets the weights of the network to be a polyak average between
// its existing weights and the weights of another network with the same
// architecture: w = tau * source + (1 - tau) * w
func (dest *NeuralNet) Polyak(source *NeuralNet, tau float64) error {
	if len(dest.layers) != len(source.layers) {
		return fmt.Errorf("polyak: cannot average %v layers with %v layers",
			len(dest.layers), len(source.layers))
	}

	for i, layer := range dest.layers {
		src := source.layers[i]
		destIn, destOut := layer.Dims()
		srcIn, srcOut := src.Dims()
		if destIn != srcIn || destOut != srcOut {
			return fmt.Errorf("polyak: layer %v shape mismatch", i)
		}

		layer.Weights.Scale(1-tau, layer.Weights)
		layer.Weights.Apply(func(r, c int, v float64) float64 {
			return v + tau*src.Weights.At(r, c)
		}, layer.Weights)

		layer.Biases.ScaleVec(1-tau, layer.Biases)
		layer.Biases.AddScaledVec(layer.Biases, tau, src.Biases)
	}
	return nil
}

// String implements the Stringer interface
func (n *NeuralNet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "NeuralNet | hidden: %v  |  final: %v  |  loss: %v  "+
		"|  learning rate: %v\n", n.hidden, n.final, n.loss, n.learningRate)
	for i, layer := range n.layers {
		fmt.Fprintf(&sb, "Layer %d weights:\n%v\nbiases:\n%v\n", i,
			matutils.Format(layer.Weights), matutils.Format(layer.Biases))
	}
	return sb.String()
}

type netJSON struct {
	Layers       []*Layer    `json:"layers"`
	LearningRate float64     `json:"learning_rate"`
	Hidden       *Activation `json:"hidden_activation"`
	Final        *Activation `json:"final_activation"`
	Loss         *Loss       `json:"loss"`
	History      []float64   `json:"history"`
}

// MarshalJSON implements the json.Marshaler interface
func (n *NeuralNet) MarshalJSON() ([]byte, error) {
	return json.Marshal(netJSON{
		Layers:       n.layers,
		LearningRate: n.learningRate,
		Hidden:       n.hidden,
		Final:        n.final,
		Loss:         n.loss,
		History:      n.history,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. Layers added
// to an unmarshalled network are sampled from a source seeded with 0.
func (n *NeuralNet) UnmarshalJSON(data []byte) error {
	var decoded netJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if decoded.Hidden == nil || decoded.Final == nil || decoded.Loss == nil {
		return fmt.Errorf("unmarshalJSON: missing activation or loss")
	}

	for i, layer := range decoded.Layers {
		if layer == nil {
			return fmt.Errorf("unmarshalJSON: layer %v is missing", i)
		}
	}
	for i := 1; i < len(decoded.Layers); i++ {
		_, out := decoded.Layers[i-1].Dims()
		in, _ := decoded.Layers[i].Dims()
		if in != out {
			return fmt.Errorf("unmarshalJSON: layer %v has %v inputs but "+
				"layer %v has %v outputs", i, in, i-1, out)
		}
	}

	*n = NeuralNet{
		layers:       decoded.Layers,
		learningRate: decoded.LearningRate,
		hidden:       decoded.Hidden,
		final:        decoded.Final,
		loss:         decoded.Loss,
		history:      decoded.History,
		src:          rand.NewSource(0),
	}
	return nil
}
