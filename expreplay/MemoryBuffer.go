// Package expreplay implements a fixed-capacity experience replay
// buffer, sampled uniformly at random
package expreplay

import (
	"fmt"
)

// Experience is a single stored transition with encoded states
type Experience struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Terminal  bool
}

// MemoryBuffer is an experience replay buffer which holds at most
// Capacity experiences. When full, adding an experience removes the
// oldest one.
type MemoryBuffer struct {
	experiences []Experience
	start       int
	size        int

	sampler *uniformSelector
}

// New returns a new MemoryBuffer which samples with a source seeded
// with seed
func New(capacity int, seed uint64) (*MemoryBuffer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be positive, got %v",
			capacity)
	}

	return &MemoryBuffer{
		experiences: make([]Experience, capacity),
		sampler:     newUniformSelector(seed),
	}, nil
}

// Add adds an experience to the buffer, evicting the oldest experience
// if the buffer is full
func (m *MemoryBuffer) Add(e Experience) {
	if m.size == m.Capacity() {
		m.experiences[m.start] = e
		m.start = (m.start + 1) % m.Capacity()
		return
	}

	m.experiences[(m.start+m.size)%m.Capacity()] = e
	m.size++
}

// Sample returns batchSize distinct experiences chosen uniformly at
// random
func (m *MemoryBuffer) Sample(batchSize int) ([]Experience, error) {
	if m.size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if batchSize > m.size {
		return nil, &ExpReplayError{
			Op:  "sample",
			Err: fmt.Errorf("%w: requested %v from %v",
				errInsufficientSamples, batchSize, m.size),
		}
	}

	indices := m.sampler.choose(batchSize, m.size)
	batch := make([]Experience, len(indices))
	for i, index := range indices {
		batch[i] = m.experiences[(m.start+index)%m.Capacity()]
	}
	return batch, nil
}

// Len returns the current number of experiences in the buffer
func (m *MemoryBuffer) Len() int {
	return m.size
}

// Capacity returns the maximum number of experiences in the buffer
func (m *MemoryBuffer) Capacity() int {
	return len(m.experiences)
}

// Clear removes all experiences from the buffer
func (m *MemoryBuffer) Clear() {
	for i := range m.experiences {
		m.experiences[i] = Experience{}
	}
	m.start, m.size = 0, 0
}

// Oldest returns the oldest experience in the buffer
func (m *MemoryBuffer) Oldest() (Experience, error) {
	if m.size == 0 {
		return Experience{}, &ExpReplayError{Op: "oldest", Err: errEmptyCache}
	}
	return m.experiences[m.start], nil
}

// String returns the string representation of the MemoryBuffer
func (m *MemoryBuffer) String() string {
	return fmt.Sprintf("MemoryBuffer | Size: %v  |  Capacity: %v", m.size,
		m.Capacity())
}
