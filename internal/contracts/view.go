package contracts

// ViewState is one instance of a chart view's editable state.
// A session holds two: committed (rendered) and draft (being edited).
type ViewState struct {
	SelectedSeriesIDs []SeriesID            `json:"selected_series_ids"`
	Visibility        map[SeriesID]bool     `json:"visibility"`
	SelectedForecasts map[SeriesID][]string `json:"selected_forecasts"`
	PlotMode          PlotMode              `json:"plot_mode"`
	ChartType         ChartType             `json:"chart_type"`
	ViewTitle         string                `json:"view_title"`
}

// NewViewState returns an empty view with the default modes
func NewViewState(title string) ViewState {
	return ViewState{
		SelectedSeriesIDs: []SeriesID{},
		Visibility:        map[SeriesID]bool{},
		SelectedForecasts: map[SeriesID][]string{},
		PlotMode:          PlotAll,
		ChartType:         ChartLine,
		ViewTitle:         title,
	}
}

// Clone deep-copies the state so edits to the copy never leak back
func (v ViewState) Clone() ViewState {
	out := ViewState{
		SelectedSeriesIDs: append([]SeriesID{}, v.SelectedSeriesIDs...),
		Visibility:        make(map[SeriesID]bool, len(v.Visibility)),
		SelectedForecasts: make(map[SeriesID][]string, len(v.SelectedForecasts)),
		PlotMode:          v.PlotMode,
		ChartType:         v.ChartType,
		ViewTitle:         v.ViewTitle,
	}
	for id, visible := range v.Visibility {
		out.Visibility[id] = visible
	}
	for id, dates := range v.SelectedForecasts {
		out.SelectedForecasts[id] = append([]string{}, dates...)
	}
	return out
}

// Contains reports whether id is selected
func (v ViewState) Contains(id SeriesID) bool {
	for _, s := range v.SelectedSeriesIDs {
		if s == id {
			return true
		}
	}
	return false
}

// IsVisible reports whether id is selected and shown
func (v ViewState) IsVisible(id SeriesID) bool {
	return v.Visibility[id]
}

// Forecasts returns the vintage dates selected for id, in selection order
func (v ViewState) Forecasts(id SeriesID) []string {
	return v.SelectedForecasts[id]
}
