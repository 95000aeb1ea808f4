// Package trackers implements Trackers, which track and save data in an
// experiment
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/gorl/timestep"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished. Track is called once at the end of every
// episode.
type Tracker interface {
	Track(e timestep.Episode)
	Save() error
}

// save gob encodes data to filename
func save(filename string, data any) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("save: could not encode data: %w", err)
	}
	return file.Close()
}

// load decodes the gob encoded data in filename into data
func load(filename string, data any) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open data file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(data); err != nil {
		return fmt.Errorf("load: could not decode data: %w", err)
	}
	return nil
}
