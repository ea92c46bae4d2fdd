package viewstate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

var (
	// ErrNoDraft is returned by edits made while the editor is closed
	ErrNoDraft = errors.New("editor is not open")
	// ErrSeriesNotSelected is returned when an edit names a series outside the view
	ErrSeriesNotSelected = errors.New("series is not selected")
	// ErrNotIndustry is returned when a forecast vintage is chosen for a FRED series
	ErrNotIndustry = errors.New("forecast vintages exist only for Industry series")
)

// Store holds a view's committed state and, while the editor is open, its draft.
// ⭐ SSOT: committed/draft 분리: 편집은 draft에만, Apply 시에만 committed로 복사
//
// Store is not safe for concurrent use; a session's command loop owns it.
type Store struct {
	committed    contracts.ViewState
	draft        *contracts.ViewState
	defaultTitle string
}

// NewStore starts a store from an initial committed state
func NewStore(initial contracts.ViewState, defaultTitle string) *Store {
	return &Store{
		committed:    initial.Clone(),
		defaultTitle: defaultTitle,
	}
}

// Committed returns a copy of the rendered state
func (s *Store) Committed() contracts.ViewState {
	return s.committed.Clone()
}

// Draft returns a copy of the draft and whether the editor is open
func (s *Store) Draft() (contracts.ViewState, bool) {
	if s.draft == nil {
		return contracts.ViewState{}, false
	}
	return s.draft.Clone(), true
}

// EditorOpen reports whether a draft exists
func (s *Store) EditorOpen() bool {
	return s.draft != nil
}

// OpenEditor replaces any draft with a fresh clone of committed
func (s *Store) OpenEditor() contracts.ViewState {
	d := s.committed.Clone()
	s.draft = &d
	return d.Clone()
}

// Apply copies the draft into committed and closes the editor
func (s *Store) Apply() (contracts.ViewState, error) {
	if s.draft == nil {
		return contracts.ViewState{}, ErrNoDraft
	}
	if strings.TrimSpace(s.draft.ViewTitle) == "" {
		s.draft.ViewTitle = s.defaultTitle
	}
	s.committed = *s.draft
	s.draft = nil
	return s.committed.Clone(), nil
}

// Discard drops the draft. Discarding with the editor closed is a no-op.
func (s *Store) Discard() {
	s.draft = nil
}

// AddSeries selects id in the draft, visible and without forecasts.
// It reports false when id was already selected.
func (s *Store) AddSeries(id contracts.SeriesID) (bool, error) {
	d, err := s.editable()
	if err != nil {
		return false, err
	}
	if id.IsZero() {
		return false, fmt.Errorf("add series: empty series id")
	}
	if d.Contains(id) {
		return false, nil
	}

	d.SelectedSeriesIDs = append(d.SelectedSeriesIDs, id)
	d.Visibility[id] = true
	return true, nil
}

// ToggleVisibility flips id's draft visibility and returns the new value
func (s *Store) ToggleVisibility(id contracts.SeriesID) (bool, error) {
	d, err := s.editable()
	if err != nil {
		return false, err
	}
	if !d.Contains(id) {
		return false, fmt.Errorf("toggle %s: %w", id, ErrSeriesNotSelected)
	}

	d.Visibility[id] = !d.Visibility[id]
	return d.Visibility[id], nil
}

// DeleteSeries removes id from the draft's selection, visibility and forecasts together
func (s *Store) DeleteSeries(id contracts.SeriesID) error {
	d, err := s.editable()
	if err != nil {
		return err
	}
	if !d.Contains(id) {
		return fmt.Errorf("delete %s: %w", id, ErrSeriesNotSelected)
	}

	kept := d.SelectedSeriesIDs[:0:0]
	for _, sel := range d.SelectedSeriesIDs {
		if sel != id {
			kept = append(kept, sel)
		}
	}
	d.SelectedSeriesIDs = kept
	delete(d.Visibility, id)
	delete(d.SelectedForecasts, id)
	return nil
}

// SelectForecast changes the draft's vintage selection for an Industry series.
// Without toggle the selection becomes exactly date; with toggle date is added
// when absent and removed when present. The resulting selection is returned.
func (s *Store) SelectForecast(id contracts.SeriesID, date string, toggle bool) ([]string, error) {
	d, err := s.editable()
	if err != nil {
		return nil, err
	}
	if !id.IsIndustry() {
		return nil, fmt.Errorf("select forecast for %s: %w", id, ErrNotIndustry)
	}
	if !d.Contains(id) {
		return nil, fmt.Errorf("select forecast for %s: %w", id, ErrSeriesNotSelected)
	}
	if date == "" {
		return nil, fmt.Errorf("select forecast for %s: empty vintage date", id)
	}

	if !toggle {
		d.SelectedForecasts[id] = []string{date}
		return []string{date}, nil
	}

	current := d.SelectedForecasts[id]
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, existing := range current {
		if existing == date {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if !removed {
		next = append(next, date)
	}

	d.SelectedForecasts[id] = next
	return append([]string{}, next...), nil
}

// SetViewTitle edits the draft title; an empty title becomes the default on apply
func (s *Store) SetViewTitle(title string) error {
	d, err := s.editable()
	if err != nil {
		return err
	}
	d.ViewTitle = title
	return nil
}

// SetPlotMode changes committed directly and mirrors the change into an open draft
func (s *Store) SetPlotMode(mode contracts.PlotMode) {
	s.committed.PlotMode = mode
	if s.draft != nil {
		s.draft.PlotMode = mode
	}
}

// SetChartType changes committed directly and mirrors the change into an open draft
func (s *Store) SetChartType(chartType contracts.ChartType) {
	s.committed.ChartType = chartType
	if s.draft != nil {
		s.draft.ChartType = chartType
	}
}

// SetCommittedForecasts seeds a committed vintage selection outside the editor.
// View initialisation uses it for the default (latest) vintage.
func (s *Store) SetCommittedForecasts(id contracts.SeriesID, dates []string) {
	s.committed.SelectedForecasts[id] = append([]string{}, dates...)
}

// SetCommittedTitle sets the rendered title outside the editor
func (s *Store) SetCommittedTitle(title string) {
	s.committed.ViewTitle = title
}

func (s *Store) editable() (*contracts.ViewState, error) {
	if s.draft == nil {
		return nil, ErrNoDraft
	}
	return s.draft, nil
}
