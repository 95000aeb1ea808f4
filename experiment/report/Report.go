// Package report renders charts of training data. Static charts are
// drawn with gonum/plot and interactive charts with go-echarts.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size of saved figures
const (
	width  = 8 * vg.Inch
	height = 5 * vg.Inch
)

// MovingAverage returns the means of every window of consecutive
// values of xs. If xs has fewer values than window, the mean of all of
// xs is returned.
func MovingAverage(xs []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("movingAverage: window must be positive, "+
			"got %v", window)
	}
	if len(xs) == 0 {
		return nil, nil
	}
	if len(xs) < window {
		return []float64{stat.Mean(xs, nil)}, nil
	}

	avg := make([]float64, 0, len(xs)-window+1)
	for i := window; i <= len(xs); i++ {
		avg = append(avg, stat.Mean(xs[i-window:i], nil))
	}
	return avg, nil
}

// points returns ys as points with x values 0, 1, ...
func points(ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(ys))
	for i, y := range ys {
		pts[i] = plotter.XY{X: float64(i), Y: y}
	}
	return pts
}

// save saves p to path, creating parent directories. The image format
// is given by the extension of path.
func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// PlotLoss plots the loss history of a network, smoothed over window
// training steps
func PlotLoss(history []float64, window int, path string) error {
	smoothed, err := MovingAverage(history, window)
	if err != nil {
		return fmt.Errorf("plotLoss: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Training Loss"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Loss"

	line, err := plotter.NewLine(points(smoothed))
	if err != nil {
		return fmt.Errorf("plotLoss: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line, plotter.NewGrid())

	if err := save(p, path); err != nil {
		return fmt.Errorf("plotLoss: %w", err)
	}
	return nil
}

// PlotReturns plots the episodic returns of every player, smoothed
// over window episodes
func PlotReturns(returns [][]float64, window int, path string) error {
	p := plot.New()
	p.Title.Text = "Episodic Return"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"
	p.Add(plotter.NewGrid())

	for player, ret := range returns {
		smoothed, err := MovingAverage(ret, window)
		if err != nil {
			return fmt.Errorf("plotReturns: %w", err)
		}

		line, err := plotter.NewLine(points(smoothed))
		if err != nil {
			return fmt.Errorf("plotReturns: %w", err)
		}
		line.Color = plotutil.Color(player)
		p.Add(line)
		p.Legend.Add("player "+strconv.Itoa(player), line)
	}

	if err := save(p, path); err != nil {
		return fmt.Errorf("plotReturns: %w", err)
	}
	return nil
}

// PlotFit plots the targets of a one dimensional regression problem
// as points and a model's predictions as a line
func PlotFit(xs, targets, predictions []float64, path string) error {
	if len(xs) != len(targets) || len(xs) != len(predictions) {
		return fmt.Errorf("plotFit: got %v inputs, %v targets and %v "+
			"predictions", len(xs), len(targets), len(predictions))
	}

	target := make(plotter.XYs, len(xs))
	prediction := make(plotter.XYs, len(xs))
	for i, x := range xs {
		target[i] = plotter.XY{X: x, Y: targets[i]}
		prediction[i] = plotter.XY{X: x, Y: predictions[i]}
	}
	slices.SortFunc(prediction, func(a, b plotter.XY) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	p := plot.New()
	p.Title.Text = "Function Approximation"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	if err := plotutil.AddScatters(p, "target", target); err != nil {
		return fmt.Errorf("plotFit: %w", err)
	}
	if err := plotutil.AddLines(p, "prediction", prediction); err != nil {
		return fmt.Errorf("plotFit: %w", err)
	}

	if err := save(p, path); err != nil {
		return fmt.Errorf("plotFit: %w", err)
	}
	return nil
}

// Series is a named sequence of values
type Series struct {
	Name   string
	Values []float64
}

// ReturnsChart renders an interactive line chart of every series to w
// as an HTML page
func ReturnsChart(w io.Writer, title string, series ...Series) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true),
			Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	longest := 0
	for _, s := range series {
		longest = max(longest, len(s.Values))
	}
	episodes := make([]string, longest)
	for i := range episodes {
		episodes[i] = strconv.Itoa(i)
	}
	line.SetXAxis(episodes)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("returnsChart: %w", err)
	}
	return nil
}

// SaveReturnsChart renders the chart of ReturnsChart to the file path
func SaveReturnsChart(path, title string, series ...Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("saveReturnsChart: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saveReturnsChart: %w", err)
	}
	defer f.Close()

	if err := ReturnsChart(f, title, series...); err != nil {
		return fmt.Errorf("saveReturnsChart: %w", err)
	}
	return f.Close()
}
