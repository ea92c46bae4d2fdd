package controller

import (
	"fmt"
	"strings"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// Command is one user action against a view session
type Command interface {
	Name() string
}

// OpenEditor clones committed state into a fresh draft
type OpenEditor struct{}

// AddSeries selects a series in the draft
type AddSeries struct {
	ID contracts.SeriesID
}

// ToggleVisibility flips a series' draft visibility
type ToggleVisibility struct {
	ID contracts.SeriesID
}

// DeleteSeries removes a series from the draft
type DeleteSeries struct {
	ID contracts.SeriesID
}

// SelectForecastDate picks a forecast vintage for an Industry series.
// Toggle is the ctrl/cmd click: add when absent, remove when present.
type SelectForecastDate struct {
	ID     contracts.SeriesID
	Date   string
	Toggle bool
}

// SetPlotMode switches history/forecast filtering immediately
type SetPlotMode struct {
	Mode contracts.PlotMode
}

// SetChartType switches line/bar rendering immediately
type SetChartType struct {
	Type contracts.ChartType
}

// SetViewTitle edits the draft title
type SetViewTitle struct {
	Title string
}

// ApplyChanges commits the draft and re-projects
type ApplyChanges struct{}

// DiscardChanges drops the draft
type DiscardChanges struct{}

func (OpenEditor) Name() string         { return "open_editor" }
func (AddSeries) Name() string          { return "add_series" }
func (ToggleVisibility) Name() string   { return "toggle_visibility" }
func (DeleteSeries) Name() string       { return "delete_series" }
func (SelectForecastDate) Name() string { return "select_forecast" }
func (SetPlotMode) Name() string        { return "set_plot_mode" }
func (SetChartType) Name() string       { return "set_chart_type" }
func (SetViewTitle) Name() string       { return "set_view_title" }
func (ApplyChanges) Name() string       { return "apply" }
func (DiscardChanges) Name() string     { return "discard" }

// CommandRequest is the JSON form of a command
type CommandRequest struct {
	Type      string `json:"type"`
	SeriesID  string `json:"series_id,omitempty"`
	Date      string `json:"date,omitempty"`
	Toggle    bool   `json:"toggle,omitempty"`
	PlotMode  string `json:"plot_mode,omitempty"`
	ChartType string `json:"chart_type,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Decode converts a request into a typed command
func (r CommandRequest) Decode() (Command, error) {
	seriesID := func() (contracts.SeriesID, error) {
		id, err := contracts.ParseSeriesID(r.SeriesID)
		if err != nil {
			return contracts.SeriesID{}, fmt.Errorf("%s: %w", r.Type, err)
		}
		return id, nil
	}

	switch strings.ToLower(strings.TrimSpace(r.Type)) {
	case "open_editor":
		return OpenEditor{}, nil
	case "add_series":
		id, err := seriesID()
		if err != nil {
			return nil, err
		}
		return AddSeries{ID: id}, nil
	case "toggle_visibility":
		id, err := seriesID()
		if err != nil {
			return nil, err
		}
		return ToggleVisibility{ID: id}, nil
	case "delete_series":
		id, err := seriesID()
		if err != nil {
			return nil, err
		}
		return DeleteSeries{ID: id}, nil
	case "select_forecast":
		id, err := seriesID()
		if err != nil {
			return nil, err
		}
		return SelectForecastDate{ID: id, Date: strings.TrimSpace(r.Date), Toggle: r.Toggle}, nil
	case "set_plot_mode":
		mode, err := contracts.ParsePlotMode(r.PlotMode)
		if err != nil {
			return nil, err
		}
		return SetPlotMode{Mode: mode}, nil
	case "set_chart_type":
		ct, err := contracts.ParseChartType(r.ChartType)
		if err != nil {
			return nil, err
		}
		return SetChartType{Type: ct}, nil
	case "set_view_title":
		return SetViewTitle{Title: r.Title}, nil
	case "apply":
		return ApplyChanges{}, nil
	case "discard":
		return DiscardChanges{}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", r.Type)
	}
}
