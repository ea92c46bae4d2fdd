package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
)

// gap is the ECharts placeholder for a missing value
const gap = "-"

// yearLabel shows the year of a category date, falling back to the raw label
const yearLabel = `function (value) {
	var d = new Date(value);
	return isNaN(d.getTime()) ? value : String(d.getFullYear());
}`

type echartsChart interface {
	Render(w io.Writer) error
	JSON() map[string]interface{}
	Validate()
}

// HTML writes a standalone ECharts page for the projected chart
func HTML(w io.Writer, res projection.Result) error {
	chart := buildECharts(res)
	if err := chart.Render(w); err != nil {
		return fmt.Errorf("render chart html: %w", err)
	}
	return nil
}

// OptionJSON returns the ECharts option document for the projected chart
func OptionJSON(res projection.Result) ([]byte, error) {
	chart := buildECharts(res)
	chart.Validate()

	data, err := json.Marshal(chart.JSON())
	if err != nil {
		return nil, fmt.Errorf("encode chart option: %w", err)
	}
	return data, nil
}

func globalOptions(res projection.Result) []charts.GlobalOpts {
	title := res.Title
	if title == "" {
		title = "Untitled View"
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "100%",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Left:  "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Type:   "scroll",
			Bottom: "0",
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
		),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Show:      opts.Bool(true),
				Formatter: opts.FuncOpts(yearLabel),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
	}
}

func buildECharts(res projection.Result) echartsChart {
	if res.ChartType == contracts.ChartBar {
		return buildBar(res)
	}
	return buildLine(res)
}

func buildLine(res projection.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(res)...)
	line.SetXAxis(res.Dates)

	for _, cs := range res.Series {
		data := make([]opts.LineData, len(cs.Data))
		for i, v := range cs.Data {
			if v == nil {
				data[i] = opts.LineData{Value: gap}
				continue
			}
			data[i] = opts.LineData{Value: *v}
		}

		lineType := string(cs.LineStyle)
		if lineType == "" {
			lineType = string(contracts.LineSolid)
		}

		line.AddSeries(cs.Name, data,
			charts.WithLineChartOpts(opts.LineChart{
				ConnectNulls: opts.Bool(cs.ConnectNulls),
				ShowSymbol:   opts.Bool(false),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: cs.Color.RGBA(cs.Opacity),
				Type:  lineType,
				Width: 2,
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: cs.Color.RGBA(cs.Opacity),
			}),
		)
	}
	return line
}

func buildBar(res projection.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(res)...)
	bar.SetXAxis(res.Dates)

	for _, cs := range res.Series {
		data := make([]opts.BarData, len(cs.Data))
		for i, v := range cs.Data {
			if v == nil {
				data[i] = opts.BarData{Value: gap}
				continue
			}
			data[i] = opts.BarData{Value: *v}
		}

		bar.AddSeries(cs.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: cs.Color.RGBA(cs.Opacity),
			}),
		)
	}
	return bar
}
