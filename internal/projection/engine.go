package projection

import (
	"context"
	"fmt"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/palette"
	"github.com/draeangela/industry-data-visualizer/internal/seriesdata"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// ForecastBarOpacity is the fill opacity of forecast bars
const ForecastBarOpacity = 0.4

// FailedSeries is a visible series whose fetch failed; the rest of the chart still renders
type FailedSeries struct {
	SeriesID contracts.SeriesID `json:"series_id"`
	Error    string             `json:"error"`
}

// Result is a projected chart: one date axis and the series aligned to it
type Result struct {
	Title     string                  `json:"title"`
	ChartType contracts.ChartType     `json:"chart_type"`
	PlotMode  contracts.PlotMode      `json:"plot_mode"`
	Dates     []string                `json:"dates"`
	Series    []contracts.ChartSeries `json:"series"`
	Failed    []FailedSeries          `json:"failed,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// Engine turns a view state into renderer-ready chart series
// ⭐ SSOT: 차트 시리즈 투영(날짜축 통합, 이력/예측 분리, 색상/스타일)은 여기서만
type Engine struct {
	source  seriesdata.Fetcher
	palette *palette.Palette
	logger  *logger.Logger
}

// NewEngine creates a projection engine
func NewEngine(source seriesdata.Fetcher, pal *palette.Palette, log *logger.Logger) *Engine {
	return &Engine{
		source:  source,
		palette: pal,
		logger:  log,
	}
}

// historySource selects which vintages feed an Industry series' actuals line
type historySource int

const (
	// every vintage contributes, later vintages win
	historyAllVintages historySource = iota
	// only the most recent vintage contributes
	historyLatestVintage
)

// Project fetches every visible series of ids in order and projects them onto one date axis.
// Fetch failures are logged and reported in Result.Failed; only a cancelled ctx fails the call.
func (e *Engine) Project(ctx context.Context, ids []contracts.SeriesID, st contracts.ViewState) (Result, error) {
	return e.project(ctx, ids, st, historyAllVintages)
}

// Preview projects a single series the way the details dialog shows it:
// actuals come from the latest vintage only and forecasts are the given vintages.
func (e *Engine) Preview(ctx context.Context, id contracts.SeriesID, forecasts []string, chartType contracts.ChartType) (Result, error) {
	st := contracts.NewViewState("")
	st.SelectedSeriesIDs = []contracts.SeriesID{id}
	st.Visibility[id] = true
	st.ChartType = chartType
	if id.IsIndustry() {
		st.SelectedForecasts[id] = forecasts
	}
	return e.project(ctx, st.SelectedSeriesIDs, st, historyLatestVintage)
}

func (e *Engine) project(ctx context.Context, ids []contracts.SeriesID, st contracts.ViewState, hist historySource) (Result, error) {
	result := Result{
		Title:     st.ViewTitle,
		ChartType: st.ChartType,
		PlotMode:  st.PlotMode,
		Dates:     []string{},
		Series:    []contracts.ChartSeries{},
	}
	if result.ChartType == "" {
		result.ChartType = contracts.ChartLine
	}
	if result.PlotMode == "" {
		result.PlotMode = contracts.PlotAll
	}

	records := make([]contracts.SeriesRecord, 0, len(ids))
	axes := make([][]string, 0, len(ids))

	for _, id := range ids {
		if !st.IsVisible(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("project: %w", err)
		}

		rec, err := e.source.FetchSeries(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("project: %w", ctx.Err())
			}
			e.logger.WithError(err).WithField("series_id", id.String()).Error("Failed to fetch series for chart")
			result.Failed = append(result.Failed, FailedSeries{SeriesID: id, Error: err.Error()})
			continue
		}
		if len(rec.DateAxis()) == 0 {
			continue
		}

		records = append(records, rec)
		axes = append(axes, rec.DateAxis())
	}

	result.Dates = UnifyDates(axes...)

	for _, rec := range records {
		colors := e.palette.ColorsFor(rec.RecordID())

		switch r := rec.(type) {
		case *contracts.FredSeries:
			result.Series = append(result.Series, e.fredSeries(r, result, colors))
		case *contracts.IndustrySeries:
			series, warnings := e.industrySeries(r, st, result, colors, hist)
			result.Series = append(result.Series, series...)
			result.Warnings = append(result.Warnings, warnings...)
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"requested": len(ids),
		"series":    len(result.Series),
		"dates":     len(result.Dates),
		"failed":    len(result.Failed),
	}).Debug("Chart projected")

	return result, nil
}

func (e *Engine) fredSeries(r *contracts.FredSeries, res Result, colors contracts.SeriesColors) contracts.ChartSeries {
	byDate := make(map[string]*float64, len(r.Dates))
	for i, d := range r.Dates {
		if i < len(r.Values) {
			byDate[d] = r.Values[i]
		}
	}

	return baseStyle(contracts.ChartSeries{
		SeriesID: r.ID,
		Name:     r.Name,
		Role:     contracts.RoleFred,
		Data:     align(res.Dates, byDate),
	}, res.ChartType, colors.Base)
}

func (e *Engine) industrySeries(r *contracts.IndustrySeries, st contracts.ViewState, res Result, colors contracts.SeriesColors, hist historySource) ([]contracts.ChartSeries, []string) {
	var out []contracts.ChartSeries
	var warnings []string

	if res.PlotMode.IncludesHistory() {
		out = append(out, baseStyle(contracts.ChartSeries{
			SeriesID: r.ID,
			Name:     HistoricalName(r),
			Role:     contracts.RoleHistorical,
			Data:     align(res.Dates, actuals(r, hist)),
		}, res.ChartType, colors.Base))
	}

	if !res.PlotMode.IncludesForecasts() {
		return out, warnings
	}

	for k, vintageDate := range st.Forecasts(r.ID) {
		byDate := map[string]*float64{}
		if v, ok := r.FindVintage(vintageDate); ok {
			for i, d := range r.Dates {
				if v.ForecastAt(i) {
					byDate[d] = v.ValueAt(i)
				}
			}
		} else {
			msg := fmt.Sprintf("no forecast vintage %s in series %s", vintageDate, r.ID)
			e.logger.WithField("series_id", r.ID.String()).Warn(msg)
			warnings = append(warnings, msg)
		}

		out = append(out, forecastStyle(contracts.ChartSeries{
			SeriesID:    r.ID,
			Name:        ForecastName(r, vintageDate),
			Role:        contracts.RoleForecast,
			VintageDate: vintageDate,
			Data:        align(res.Dates, byDate),
		}, res.ChartType, colors.Shade(k)))
	}

	return out, warnings
}

// actuals collects the non-forecast values of an Industry series by date
func actuals(r *contracts.IndustrySeries, hist historySource) map[string]*float64 {
	vintages := r.History
	if hist == historyLatestVintage {
		latest, ok := r.LatestVintage()
		if !ok {
			return map[string]*float64{}
		}
		vintages = []contracts.Vintage{latest}
	}

	byDate := make(map[string]*float64, len(r.Dates))
	for _, v := range vintages {
		for i, d := range r.Dates {
			val := v.ValueAt(i)
			if val == nil || v.ForecastAt(i) {
				continue
			}
			byDate[d] = val
		}
	}
	return byDate
}

func baseStyle(s contracts.ChartSeries, chartType contracts.ChartType, color contracts.Color) contracts.ChartSeries {
	s.Type = chartType
	s.Color = color
	s.Opacity = 1
	s.ConnectNulls = true
	if chartType == contracts.ChartLine {
		s.LineStyle = contracts.LineSolid
	}
	return s
}

func forecastStyle(s contracts.ChartSeries, chartType contracts.ChartType, color contracts.Color) contracts.ChartSeries {
	s.Type = chartType
	s.Color = color
	s.Opacity = 1
	s.ConnectNulls = true
	if chartType == contracts.ChartLine {
		s.LineStyle = contracts.LineDashed
	} else {
		s.Opacity = ForecastBarOpacity
	}
	return s
}
