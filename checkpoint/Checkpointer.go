package checkpoint

import (
	"fmt"

	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/timestep"
)

// Checkpointer checkpoints agents based on finished episodes
type Checkpointer interface {
	Checkpoint(e timestep.Episode) error
}

// nStep implements checkpointing every N episodes
type nStep struct {
	interval int
	store    Store
	agent    agent.Typed

	// name returns the name to store the next checkpoint under.
	//
	// If each checkpoint should be kept under a separate name with an
	// incremented number as a suffix (e.g. agent-1, agent-2, ...,
	// agent-K), then use FilenameEnumerator to generate the names.
	// A function returning a constant name keeps only the most recent
	// checkpoint.
	name func() string
}

// NewNStep returns a checkpointer that saves a to store after every n
// episodes
func NewNStep(n int, store Store, a agent.Typed,
	name func() string) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: interval must be positive, "+
			"got %v", n)
	}
	return &nStep{
		interval: n,
		store:    store,
		agent:    a,
		name:     name,
	}, nil
}

// Checkpoint saves the tracked agent if the episode is due
func (n *nStep) Checkpoint(e timestep.Episode) error {
	if (e.Number+1)%n.interval == 0 {
		return n.store.Save(n.name(), n.agent)
	}
	return nil
}

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	name      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	f.i++
	return fmt.Sprintf("%v%v%v", f.name, f.i, f.extension)
}

// FilenameEnumerator returns a function which will return filenames
// with a counter integer suffix. Each time the returned function is
// called, the filename counter suffix will be one higher than on the
// previous call, starting at start+1.
func FilenameEnumerator(start int, filename, extension string) func() string {
	enum := fileEnumerator{i: start, name: filename, extension: extension}

	return enum.filename
}
