package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// autodiffGradients computes the gradients of the mean squared error of
// a 2-layer sigmoid/linear network with gorgonia's symbolic
// differentiation, returned as weights0, biases0, weights1, biases1
func autodiffGradients(t *testing.T, net *NeuralNet, input,
	target []float64) [][]float64 {
	t.Helper()
	g := G.NewGraph()

	vector := func(name string, data []float64) *G.Node {
		backing := append([]float64(nil), data...)
		return G.NewVector(g, tensor.Float64, G.WithShape(len(data)),
			G.WithName(name), G.WithValue(tensor.New(
				tensor.WithShape(len(data)), tensor.WithBacking(backing))))
	}
	matrix := func(name string, m *mat.Dense) *G.Node {
		r, c := m.Dims()
		backing := append([]float64(nil), m.RawMatrix().Data...)
		return G.NewMatrix(g, tensor.Float64, G.WithShape(r, c),
			G.WithName(name), G.WithValue(tensor.New(
				tensor.WithShape(r, c), tensor.WithBacking(backing))))
	}

	layers := net.Layers()
	x := vector("x", input)
	y := vector("y", target)
	w0 := matrix("w0", layers[0].Weights)
	b0 := vector("b0", layers[0].Biases.RawVector().Data)
	w1 := matrix("w1", layers[1].Weights)
	b1 := vector("b1", layers[1].Biases.RawVector().Data)

	h := G.Must(G.Sigmoid(G.Must(G.Add(G.Must(G.Mul(w0, x)), b0))))
	out := G.Must(G.Add(G.Must(G.Mul(w1, h)), b1))
	cost := G.Must(G.Mean(G.Must(G.Square(G.Must(G.Sub(out, y))))))

	grads, err := G.Grad(cost, w0, b0, w1, b1)
	require.NoError(t, err)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	result := make([][]float64, len(grads))
	for i, grad := range grads {
		result[i] = append([]float64(nil), grad.Value().Data().([]float64)...)
	}
	return result
}

// TestBackpropMatchesAutodiff checks the hand-written backward pass
// against symbolic differentiation. The mean squared error gradient of
// the network drops the constant factor of 2, so it is half of the
// symbolic gradient. A tiny learning rate keeps the weight update used
// for propagation negligible.
func TestBackpropMatchesAutodiff(t *testing.T) {
	const lr = 1e-6

	net := New(lr, Sigmoid(), Linear(), MSE(), 5)
	net.AddLayers([]int{3, 4, 2})

	input := []float64{0.3, -0.2, 0.5}
	pred, err := net.Predict(input)
	require.NoError(t, err)
	target := []float64{pred[0] + 0.2, pred[1] - 0.3}

	want := autodiffGradients(t, net, input, target)

	before := make([][]float64, 0, 4)
	for _, layer := range net.Layers() {
		before = append(before,
			append([]float64(nil), layer.Weights.RawMatrix().Data...),
			append([]float64(nil), layer.Biases.RawVector().Data...))
	}

	require.NoError(t, net.Train([][]float64{input}, [][]float64{target}))

	after := make([][]float64, 0, 4)
	for _, layer := range net.Layers() {
		after = append(after, layer.Weights.RawMatrix().Data,
			layer.Biases.RawVector().Data)
	}

	for i := range before {
		require.Len(t, want[i], len(before[i]))
		for j := range before[i] {
			got := (before[i][j] - after[i][j]) / lr
			assert.InDelta(t, want[i][j]/2, got, 1e-5,
				"parameter group %v index %v", i, j)
		}
	}
}
