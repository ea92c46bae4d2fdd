package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
)

// ErrNothingToPlot is returned when no visible series has a value
var ErrNothingToPlot = errors.New("chart has no values to plot")

const (
	DefaultWidth  = 1200
	DefaultHeight = 600

	// label at most this many dates on the x axis
	maxDateTicks = 12
)

// PNGOptions sizes the exported image
type PNGOptions struct {
	Width  int
	Height int
}

// PNG writes the projected chart as an image.
// Dates are placed by index so any date format works; nil values are skipped,
// which bridges gaps the same way the interactive chart does.
func PNG(w io.Writer, res projection.Result, o PNGOptions) error {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}

	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, cs := range res.Series {
		var xs, ys []float64
		for i, v := range cs.Data {
			if v == nil {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, *v)
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
		}
		if len(xs) == 0 {
			continue
		}

		series = append(series, chart.ContinuousSeries{
			Name:    cs.Name,
			Style:   seriesStyle(cs),
			XValues: xs,
			YValues: ys,
		})
	}

	if len(series) == 0 {
		return ErrNothingToPlot
	}

	graph := chart.Chart{
		Title:      res.Title,
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Width:      o.Width,
		Height:     o.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Style: chart.Style{FontSize: 9},
			Ticks: axisTicks(res.Dates),
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 9},
			Range: valueRange(lo, hi),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart png: %w", err)
	}
	return nil
}

func seriesStyle(cs contracts.ChartSeries) chart.Style {
	c := drawing.Color{R: cs.Color.R, G: cs.Color.G, B: cs.Color.B, A: uint8(math.Round(cs.Opacity * 255))}
	if cs.Opacity == 0 {
		c.A = 255
	}

	style := chart.Style{
		StrokeColor: c,
		StrokeWidth: 2,
	}
	if cs.LineStyle == contracts.LineDashed {
		style.StrokeDashArray = []float64{6, 4}
	}
	if cs.Type == contracts.ChartBar {
		// bars become markers at each value
		style.StrokeWidth = 1
		style.DotColor = c
		style.DotWidth = 4
	}
	return style
}

// axisTicks brackets the date labels with unlabeled ticks half a slot outside
// the first and last date. go-chart takes the x range from the tick span when
// ticks are set, so a single date still gets a non-zero range.
func axisTicks(dates []string) []chart.Tick {
	last := math.Max(float64(len(dates))-0.5, 0.5)
	ticks := []chart.Tick{{Value: -0.5}}
	ticks = append(ticks, dateTicks(dates)...)
	return append(ticks, chart.Tick{Value: last})
}

func dateTicks(dates []string) []chart.Tick {
	if len(dates) == 0 {
		return nil
	}
	step := (len(dates) + maxDateTicks - 1) / maxDateTicks
	if step < 1 {
		step = 1
	}

	ticks := make([]chart.Tick, 0, maxDateTicks+1)
	for i := 0; i < len(dates); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: dates[i]})
	}
	return ticks
}

func valueRange(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
