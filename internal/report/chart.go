package report

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// ChartBar is one bar, in timeline order.
type ChartBar struct {
	MatchID int64
	Bin     model.BinLabel
	Metric  float64
}

// IntensityBars orders intensity records along the timeline.
func IntensityBars(records []model.IntensityRecord) []ChartBar {
	out := make([]ChartBar, len(records))
	for i, r := range records {
		out[i] = ChartBar{MatchID: r.MatchID, Bin: r.Bin, Metric: float64(r.ActionCount)}
	}
	return timeline(out)
}

// SpreadBars orders spread records along the timeline.
func SpreadBars(records []model.SpreadRecord) []ChartBar {
	out := make([]ChartBar, len(records))
	for i, r := range records {
		out[i] = ChartBar{MatchID: r.MatchID, Bin: r.Bin, Metric: r.Spread}
	}
	return timeline(out)
}

// timeline sorts by bin start; bars of the same bin group together by match.
func timeline(bars []ChartBar) []ChartBar {
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Bin.Lower != bars[j].Bin.Lower {
			return bars[i].Bin.Lower < bars[j].Bin.Lower
		}
		return bars[i].MatchID < bars[j].MatchID
	})
	return bars
}

// BarLabels returns one tick label per bar. When bars span several matches
// each label is prefixed with its match id ("10000:0-2").
func BarLabels(bars []ChartBar) []string {
	multi := false
	for _, b := range bars {
		if b.MatchID != bars[0].MatchID {
			multi = true
			break
		}
	}
	labels := make([]string, len(bars))
	for i, b := range bars {
		labels[i] = MinuteLabel(b.Bin)
		if multi {
			labels[i] = fmt.Sprintf("%d:%s", b.MatchID, labels[i])
		}
	}
	return labels
}

// SaveBarChart renders bars as a PNG (or any format plot.Save infers from the
// file extension).
func SaveBarChart(path, title, yLabel string, bars []ChartBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars to plot for %q", title)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Minutes"
	p.Y.Label.Text = yLabel

	values := make(plotter.Values, len(bars))
	for i, b := range bars {
		values[i] = b.Metric
	}
	labels := BarLabels(bars)

	chart, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	chart.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	chart.LineStyle.Width = vg.Length(0)
	p.Add(chart, plotter.NewGrid())
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.XAlign = -1.0

	width := vg.Length(len(bars))*4*vg.Millimeter + 4*vg.Inch
	if err := p.Save(width, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
