package views

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// File is a view definition on disk, used by `viewer render`.
//
//	title: Widgets outlook
//	plot_mode: all
//	chart_type: line
//	series:
//	  - id: "101"
//	    forecasts: ["2021-06"]
//	  - id: GDPC1
//	    hidden: true
type File struct {
	Title     string       `yaml:"title"`
	PlotMode  string       `yaml:"plot_mode,omitempty"`
	ChartType string       `yaml:"chart_type,omitempty"`
	Series    []FileSeries `yaml:"series"`
}

// FileSeries is one selected series of a view file
type FileSeries struct {
	ID        string   `yaml:"id"`
	Hidden    bool     `yaml:"hidden,omitempty"`
	Forecasts []string `yaml:"forecasts,omitempty"`
}

// LoadFile reads a view definition from path
func LoadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open view file: %w", err)
	}
	defer f.Close()

	return DecodeFile(f)
}

// DecodeFile parses a YAML view definition
func DecodeFile(r io.Reader) (File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return File{}, fmt.Errorf("parse view file: %w", err)
	}
	return file, nil
}

// State converts the file into a committed view state.
// Duplicate ids keep their first entry; forecasts on FRED series are rejected.
func (f File) State(defaultTitle string) (contracts.ViewState, error) {
	title := f.Title
	if title == "" {
		title = defaultTitle
	}
	state := contracts.NewViewState(title)

	if f.PlotMode != "" {
		mode, err := contracts.ParsePlotMode(f.PlotMode)
		if err != nil {
			return contracts.ViewState{}, err
		}
		state.PlotMode = mode
	}
	if f.ChartType != "" {
		chartType, err := contracts.ParseChartType(f.ChartType)
		if err != nil {
			return contracts.ViewState{}, err
		}
		state.ChartType = chartType
	}

	for i, s := range f.Series {
		id, err := contracts.ParseSeriesID(s.ID)
		if err != nil {
			return contracts.ViewState{}, fmt.Errorf("series %d: %w", i+1, err)
		}
		if state.Contains(id) {
			continue
		}
		if len(s.Forecasts) > 0 && !id.IsIndustry() {
			return contracts.ViewState{}, fmt.Errorf("series %s: forecasts apply to industry series only", id)
		}

		state.SelectedSeriesIDs = append(state.SelectedSeriesIDs, id)
		state.Visibility[id] = !s.Hidden
		if id.IsIndustry() {
			state.SelectedForecasts[id] = append([]string{}, s.Forecasts...)
		}
	}

	return state, nil
}

// FileFromState is the inverse of File.State
func FileFromState(state contracts.ViewState) File {
	file := File{
		Title:     state.ViewTitle,
		PlotMode:  string(state.PlotMode),
		ChartType: string(state.ChartType),
		Series:    make([]FileSeries, 0, len(state.SelectedSeriesIDs)),
	}
	for _, id := range state.SelectedSeriesIDs {
		file.Series = append(file.Series, FileSeries{
			ID:        id.String(),
			Hidden:    !state.IsVisible(id),
			Forecasts: append([]string(nil), state.Forecasts(id)...),
		})
	}
	return file
}

// Encode writes the file as YAML
func (f File) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode view file: %w", err)
	}
	return enc.Close()
}
