package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
)

func f(v float64) *float64 { return &v }

func sampleResult(chartType contracts.ChartType) projection.Result {
	base := contracts.Color{R: 40, G: 120, B: 200}
	shade := contracts.Color{R: 10, G: 90, B: 170}

	forecast := contracts.ChartSeries{
		SeriesID:     contracts.MustSeriesID("101"),
		Name:         "Forecast as of: 2021-06 (Widgets)",
		Role:         contracts.RoleForecast,
		VintageDate:  "2021-06",
		Type:         chartType,
		Color:        shade,
		Opacity:      1,
		Data:         []*float64{nil, nil, f(12)},
		ConnectNulls: true,
	}
	if chartType == contracts.ChartBar {
		forecast.Opacity = projection.ForecastBarOpacity
	} else {
		forecast.LineStyle = contracts.LineDashed
	}

	return projection.Result{
		Title:     "Widgets outlook",
		ChartType: chartType,
		PlotMode:  contracts.PlotAll,
		Dates:     []string{"2021-04", "2021-05", "2021-06"},
		Series: []contracts.ChartSeries{
			{
				SeriesID:     contracts.MustSeriesID("101"),
				Name:         "Widgets (MODEL: DURABLES)",
				Role:         contracts.RoleHistorical,
				Type:         chartType,
				Color:        base,
				LineStyle:    contracts.LineSolid,
				Opacity:      1,
				Data:         []*float64{f(10), f(11), nil},
				ConnectNulls: true,
			},
			forecast,
		},
	}
}

func decodeOption(t *testing.T, res projection.Result) map[string]interface{} {
	t.Helper()
	data, err := OptionJSON(res)
	require.NoError(t, err)

	var option map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &option))
	return option
}

func TestOptionJSON_Line(t *testing.T) {
	option := decodeOption(t, sampleResult(contracts.ChartLine))

	tooltip := option["tooltip"].(map[string]interface{})
	assert.Equal(t, "axis", tooltip["trigger"])

	legend := option["legend"].(map[string]interface{})
	assert.Equal(t, "scroll", legend["type"])

	zooms := option["dataZoom"].([]interface{})
	require.Len(t, zooms, 2)
	assert.Equal(t, "inside", zooms[0].(map[string]interface{})["type"])
	assert.Equal(t, "slider", zooms[1].(map[string]interface{})["type"])

	series := option["series"].([]interface{})
	require.Len(t, series, 2)

	hist := series[0].(map[string]interface{})
	assert.Equal(t, "line", hist["type"])
	assert.Equal(t, "Widgets (MODEL: DURABLES)", hist["name"])
	assert.Equal(t, true, hist["connectNulls"])

	fc := series[1].(map[string]interface{})
	lineStyle := fc["lineStyle"].(map[string]interface{})
	assert.Equal(t, "dashed", lineStyle["type"])
	assert.Equal(t, "rgba(10, 90, 170, 1)", lineStyle["color"])

	data := fc["data"].([]interface{})
	require.Len(t, data, 3)
	assert.Equal(t, "-", data[0].(map[string]interface{})["value"], "gaps are placeholders, not zero")
	assert.Equal(t, 12.0, data[2].(map[string]interface{})["value"])
}

func TestOptionJSON_Bar(t *testing.T) {
	option := decodeOption(t, sampleResult(contracts.ChartBar))

	series := option["series"].([]interface{})
	require.Len(t, series, 2)

	fc := series[1].(map[string]interface{})
	assert.Equal(t, "bar", fc["type"])
	itemStyle := fc["itemStyle"].(map[string]interface{})
	assert.Equal(t, "rgba(10, 90, 170, 0.4)", itemStyle["color"])
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleResult(contracts.ChartLine)))

	page := buf.String()
	assert.Contains(t, page, "Widgets outlook")
	assert.Contains(t, page, "dataZoom")
	assert.True(t, strings.Contains(page, "<html") || strings.Contains(page, "<!DOCTYPE"))
}

func TestHTML_UntitledFallback(t *testing.T) {
	res := sampleResult(contracts.ChartLine)
	res.Title = ""

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, res))
	assert.Contains(t, buf.String(), "Untitled View")
}

func TestPNG(t *testing.T) {
	for _, ct := range []contracts.ChartType{contracts.ChartLine, contracts.ChartBar} {
		t.Run(string(ct), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, PNG(&buf, sampleResult(ct), PNGOptions{Width: 640, Height: 320}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
		})
	}
}

func TestPNG_SinglePoint(t *testing.T) {
	res := projection.Result{
		Title: "one",
		Dates: []string{"2020-01"},
		Series: []contracts.ChartSeries{
			{Name: "A", Type: contracts.ChartLine, Opacity: 1, Data: []*float64{f(5)}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, res, PNGOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	// one observation per series spread over several dates
	res.Dates = []string{"2020-01", "2020-02"}
	res.Series = []contracts.ChartSeries{
		{Name: "A", Type: contracts.ChartBar, Opacity: 1, Data: []*float64{f(5), nil}},
		{Name: "B", Type: contracts.ChartBar, Opacity: 0.4, Data: []*float64{nil, f(6)}},
	}
	buf.Reset()
	require.NoError(t, PNG(&buf, res, PNGOptions{}))
}

func TestPNG_NothingToPlot(t *testing.T) {
	res := projection.Result{
		Dates: []string{"2020-01"},
		Series: []contracts.ChartSeries{
			{Name: "empty", Data: []*float64{nil}},
		},
	}

	err := PNG(&bytes.Buffer{}, res, PNGOptions{})
	assert.True(t, errors.Is(err, ErrNothingToPlot))

	err = PNG(&bytes.Buffer{}, projection.Result{}, PNGOptions{})
	assert.True(t, errors.Is(err, ErrNothingToPlot))
}

func TestDateTicks(t *testing.T) {
	dates := make([]string, 30)
	for i := range dates {
		dates[i] = "d"
	}

	ticks := dateTicks(dates)
	assert.LessOrEqual(t, len(ticks), maxDateTicks+1)
	assert.Equal(t, 0.0, ticks[0].Value)
	assert.Nil(t, dateTicks(nil))
}

func TestAxisTicks(t *testing.T) {
	ticks := axisTicks([]string{"2020-01"})
	require.Len(t, ticks, 3)
	assert.Equal(t, -0.5, ticks[0].Value)
	assert.Equal(t, "2020-01", ticks[1].Label)
	assert.Equal(t, 0.5, ticks[2].Value)
	assert.Empty(t, ticks[2].Label)

	ticks = axisTicks(nil)
	assert.Greater(t, ticks[len(ticks)-1].Value, ticks[0].Value)
}
