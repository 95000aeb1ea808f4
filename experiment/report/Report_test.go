package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	avg, err := MovingAverage([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.5, 2.5, 3.5, 4.5}, avg, 1e-12)

	avg, err = MovingAverage([]float64{1, 2, 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, avg)

	avg, err = MovingAverage([]float64{1, 3}, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, avg)

	avg, err = MovingAverage(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, avg)

	_, err = MovingAverage([]float64{1}, 0)
	assert.Error(t, err)
}

func assertNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()

	history := make([]float64, 100)
	for i := range history {
		history[i] = 1 / float64(i+1)
	}
	loss := filepath.Join(dir, "loss.png")
	require.NoError(t, PlotLoss(history, 10, loss))
	assertNonEmpty(t, loss)

	returns := filepath.Join(dir, "nested", "returns.png")
	require.NoError(t, PlotReturns([][]float64{history, history[:50]}, 5,
		returns))
	assertNonEmpty(t, returns)

	xs := []float64{0.5, 0, 1}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Sin(x)
	}
	fit := filepath.Join(dir, "fit.png")
	require.NoError(t, PlotFit(xs, ys, ys, fit))
	assertNonEmpty(t, fit)

	assert.Error(t, PlotFit(xs, ys[:1], ys, fit))
}

func TestReturnsChart(t *testing.T) {
	var out bytes.Buffer
	err := ReturnsChart(&out, "Returns",
		Series{Name: "player 0", Values: []float64{1, 2, 3}},
		Series{Name: "player 1", Values: []float64{-1}})
	require.NoError(t, err)

	html := out.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "player 0")
	assert.Contains(t, html, "player 1")

	path := filepath.Join(t.TempDir(), "charts", "returns.html")
	require.NoError(t, SaveReturnsChart(path, "Returns",
		Series{Name: "run", Values: []float64{0, 1}}))
	assertNonEmpty(t, path)
}
