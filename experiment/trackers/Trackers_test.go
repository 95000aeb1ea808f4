package trackers

import (
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/gorl/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturn(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(filename)

	r.Track(timestep.Episode{Number: 0, Steps: 5, Returns: []float64{1, -1}})
	r.Track(timestep.Episode{Number: 1, Steps: 7, Returns: []float64{0.5, 2}})
	assert.Equal(t, 2, r.Episodes())
	assert.Equal(t, []float64{1, 0.5}, r.Returns(0))
	assert.Equal(t, []float64{-1, 2}, r.Returns(1))
	assert.Nil(t, r.Returns(2))

	require.NoError(t, r.Save())
	data, err := LoadReturns(filename)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0.5}, {-1, 2}}, data)
}

func TestReturnPadsNewPlayers(t *testing.T) {
	r := NewReturn("")
	r.Track(timestep.Episode{Returns: []float64{1}})
	r.Track(timestep.Episode{Returns: []float64{2, 3}})
	assert.Equal(t, []float64{1, 2}, r.Returns(0))
	assert.Equal(t, []float64{0, 3}, r.Returns(1))
}

func TestEpisodeLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	e := NewEpisodeLength(filename)
	for _, steps := range []int{3, 9, 4} {
		e.Track(timestep.Episode{Steps: steps})
	}
	require.NoError(t, e.Save())

	data, err := LoadEpisodeLengths(filename)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 9, 4}, data)
}

func TestLoadMissing(t *testing.T) {
	_, err := LoadReturns(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestSaveBadPath(t *testing.T) {
	r := NewReturn(filepath.Join(t.TempDir(), "missing", "returns.bin"))
	assert.Error(t, r.Save())
}
