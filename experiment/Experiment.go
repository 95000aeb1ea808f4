// Package experiment implements functionality for running experiments,
// in which agents are trained by interacting with an environment
package experiment

import (
	"github.com/samuelfneumann/gorl/timestep"
	"golang.org/x/sync/errgroup"
)

// Experiment outlines structs that can run experiments. Run runs all
// episodes of the experiment, RunEpisode runs a single episode and
// Save saves all data tracked during the experiment.
type Experiment interface {
	Run() error
	RunEpisode() (timestep.Episode, error)
	Save() error
}

// RunParallel runs independent experiments concurrently, each on its
// own goroutine. The experiments must not share environments or
// agents. The first error encountered is returned once all experiments
// have finished.
func RunParallel(experiments ...Experiment) error {
	var g errgroup.Group
	for _, exp := range experiments {
		g.Go(exp.Run)
	}
	return g.Wait()
}
