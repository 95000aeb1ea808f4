package cli

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/gorl/experiment/report"
	"github.com/samuelfneumann/gorl/network"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type networkFlags struct {
	hidden       int
	epochs       int
	points       int
	learningRate float64
	seed         uint64
	window       int
	out          string
}

func newNetworkCommand(g *globals) *cobra.Command {
	f := &networkFlags{}

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Fit sin(x) on [-π, π] with a neural network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fitSine(cmd, g, f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.hidden, "hidden", 16, "width of the hidden layer")
	flags.IntVar(&f.epochs, "epochs", 500, "passes over the data")
	flags.IntVar(&f.points, "points", 100, "number of samples of sin(x)")
	flags.Float64Var(&f.learningRate, "learning-rate", 0.05,
		"learning rate")
	flags.Uint64Var(&f.seed, "seed", 0, "seed of the initial weights")
	flags.IntVar(&f.window, "window", 100, "moving average window of the "+
		"loss plot")
	flags.StringVarP(&f.out, "out", "o", "results", "directory to write "+
		"plots to")
	return cmd
}

// fitSine trains a network to approximate sin(x) and plots the loss and
// the fitted function
func fitSine(cmd *cobra.Command, g *globals, f *networkFlags) error {
	if f.points < 2 || f.epochs < 1 || f.hidden < 1 {
		return fmt.Errorf("network: points must be at least 2, epochs and " +
			"hidden must be positive")
	}

	xs := make([]float64, f.points)
	inputs := make([][]float64, f.points)
	targets := make([][]float64, f.points)
	for i := range xs {
		xs[i] = -math.Pi + 2*math.Pi*float64(i)/float64(f.points-1)

		// Inputs are scaled to [-1, 1]
		inputs[i] = []float64{xs[i] / math.Pi}
		targets[i] = []float64{math.Sin(xs[i])}
	}

	net := network.New(f.learningRate, network.TanH(), network.Linear(),
		network.MSE(), f.seed)
	net.AddLayers([]int{1, f.hidden, 1})

	for epoch := 0; epoch < f.epochs; epoch++ {
		if err := net.Train(inputs, targets); err != nil {
			return fmt.Errorf("network: %w", err)
		}
	}

	outputs, err := net.PredictBatch(inputs)
	if err != nil {
		return fmt.Errorf("network: %w", err)
	}
	predictions := make([]float64, len(outputs))
	loss := 0.0
	for i, out := range outputs {
		predictions[i] = out[0]
		loss += network.MSE().Loss(out, targets[i]) / float64(len(outputs))
	}

	if err := os.MkdirAll(f.out, 0o755); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := report.PlotLoss(net.History(), f.window,
		filepath.Join(f.out, "loss.png")); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := report.PlotFit(xs, targets1D(targets), predictions,
		filepath.Join(f.out, "fit.png")); err != nil {
		return fmt.Errorf("network: %w", err)
	}

	g.log.WithFields(logrus.Fields{
		"epochs": f.epochs,
		"loss":   loss,
	}).Info("network trained")
	fmt.Fprintf(cmd.OutOrStdout(), "final loss: %.6f\n", loss)
	return nil
}

func targets1D(targets [][]float64) []float64 {
	ys := make([]float64, len(targets))
	for i, t := range targets {
		ys[i] = t[0]
	}
	return ys
}
