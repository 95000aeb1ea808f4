package trackers

import (
	"fmt"

	"github.com/samuelfneumann/gorl/timestep"
)

// Return tracks and saves the episodic return of each player in an
// experiment. The saved data holds one slice per player, with one
// return per episode.
type Return struct {
	returns  [][]float64
	filename string
}

// NewReturn creates and returns a new *Return Tracker which saves its
// data at filename
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track caches the returns of every player in an episode
func (r *Return) Track(e timestep.Episode) {
	for len(r.returns) < len(e.Returns) {
		// Players first seen late are padded with zero returns
		r.returns = append(r.returns, make([]float64, r.Episodes()))
	}
	for i := range r.returns {
		ret := 0.0
		if i < len(e.Returns) {
			ret = e.Returns[i]
		}
		r.returns[i] = append(r.returns[i], ret)
	}
}

// Episodes returns the number of episodes tracked
func (r *Return) Episodes() int {
	if len(r.returns) == 0 {
		return 0
	}
	return len(r.returns[0])
}

// Returns returns the tracked returns of player
func (r *Return) Returns(player int) []float64 {
	if player < 0 || player >= len(r.returns) {
		return nil
	}
	return r.returns[player]
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	if err := save(r.filename, r.returns); err != nil {
		return fmt.Errorf("return: %w", err)
	}
	return nil
}

// LoadReturns loads and returns the data saved by a Return Tracker
func LoadReturns(filename string) ([][]float64, error) {
	var data [][]float64
	if err := load(filename, &data); err != nil {
		return nil, fmt.Errorf("loadReturns: %w", err)
	}
	return data, nil
}
