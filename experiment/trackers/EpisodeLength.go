package trackers

import (
	"fmt"

	"github.com/samuelfneumann/gorl/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment
type EpisodeLength struct {
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the length of an episode
func (e *EpisodeLength) Track(ep timestep.Episode) {
	e.episodeLengths = append(e.episodeLengths, ep.Steps)
}

// Lengths returns the tracked episode lengths
func (e *EpisodeLength) Lengths() []int {
	return e.episodeLengths
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	if err := save(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("episodeLength: %w", err)
	}
	return nil
}

// LoadEpisodeLengths loads and returns the data saved by an
// EpisodeLength Tracker
func LoadEpisodeLengths(filename string) ([]int, error) {
	var data []int
	if err := load(filename, &data); err != nil {
		return nil, fmt.Errorf("loadEpisodeLengths: %w", err)
	}
	return data, nil
}
