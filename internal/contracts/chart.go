package contracts

import (
	"fmt"
	"strings"
)

// PlotMode controls whether history, forecasts or both are rendered
type PlotMode string

const (
	PlotAll          PlotMode = "all"
	PlotHistoryOnly  PlotMode = "history"
	PlotForecastOnly PlotMode = "forecast"
)

// ParsePlotMode accepts the long names and the toolbar letters A/H/F
func ParsePlotMode(s string) (PlotMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "all":
		return PlotAll, nil
	case "h", "history", "history_only":
		return PlotHistoryOnly, nil
	case "f", "forecast", "forecast_only":
		return PlotForecastOnly, nil
	default:
		return "", fmt.Errorf("unknown plot mode %q", s)
	}
}

// IncludesHistory reports whether historical series are drawn
func (m PlotMode) IncludesHistory() bool { return m != PlotForecastOnly }

// IncludesForecasts reports whether forecast series are drawn
func (m PlotMode) IncludesForecasts() bool { return m != PlotHistoryOnly }

// ChartType is the rendering style of every series in a view
type ChartType string

const (
	ChartLine ChartType = "Line"
	ChartBar  ChartType = "Bar"
)

// ParseChartType is case-insensitive
func ParseChartType(s string) (ChartType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line":
		return ChartLine, nil
	case "bar":
		return ChartBar, nil
	default:
		return "", fmt.Errorf("unknown chart type %q", s)
	}
}

// Toggle returns the other chart type
func (t ChartType) Toggle() ChartType {
	if t == ChartLine {
		return ChartBar
	}
	return ChartLine
}

// Color is an RGB triplet
type Color struct {
	R uint8
	G uint8
	B uint8
}

// String renders the CSS form used by ECharts, e.g. "rgb(12, 34, 56)"
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// RGBA renders the CSS form with an alpha channel
func (c Color) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the rgb(...) form
func (c *Color) UnmarshalText(text []byte) error {
	var r, g, b int
	if _, err := fmt.Sscanf(string(text), "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
		return fmt.Errorf("parse color %q: %w", string(text), err)
	}
	*c = Color{R: uint8(r), G: uint8(g), B: uint8(b)}
	return nil
}

// SeriesColors is the colour set assigned to one series
type SeriesColors struct {
	Base           Color    `json:"base"`
	ForecastShades [3]Color `json:"forecast_shades"`
}

// Shade returns the forecast shade for the k-th selected vintage
func (c SeriesColors) Shade(k int) Color {
	n := len(c.ForecastShades)
	return c.ForecastShades[((k%n)+n)%n]
}

// SeriesRole distinguishes the chart series produced from one record
type SeriesRole string

const (
	RoleFred       SeriesRole = "fred"
	RoleHistorical SeriesRole = "historical"
	RoleForecast   SeriesRole = "forecast"
)

// LineStyle is the stroke pattern of a line series
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
)

// ChartSeries is one renderer-ready series aligned to the view's unified date axis.
// A nil entry in Data is a gap; renderers bridge gaps instead of drawing zero.
type ChartSeries struct {
	SeriesID     SeriesID   `json:"series_id"`
	Name         string     `json:"name"`
	Role         SeriesRole `json:"role"`
	VintageDate  string     `json:"vintage_date,omitempty"`
	Type         ChartType  `json:"type"`
	Color        Color      `json:"color"`
	LineStyle    LineStyle  `json:"line_style,omitempty"`
	Opacity      float64    `json:"opacity"`
	Data         []*float64 `json:"data"`
	ConnectNulls bool       `json:"connect_nulls"`
}

// Points counts the non-nil values
func (s ChartSeries) Points() int {
	n := 0
	for _, v := range s.Data {
		if v != nil {
			n++
		}
	}
	return n
}
