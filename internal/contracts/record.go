package contracts

import (
	"encoding/json"
	"fmt"
)

// SeriesRecord is a fetched series: either *IndustrySeries or *FredSeries.
// The concrete type is decided once when the backend payload is decoded.
type SeriesRecord interface {
	RecordID() SeriesID
	DisplayName() string
	DateAxis() []string
	isSeriesRecord()
}

// Vintage is one forecast snapshot of an Industry series.
// Values and IsForecast are aligned to the parent series' Dates.
type Vintage struct {
	Date       string     `json:"date"`
	Values     []*float64 `json:"values"`
	IsForecast []bool     `json:"is_forecast"`
}

// ValueAt returns the value at index i, or nil if absent
func (v Vintage) ValueAt(i int) *float64 {
	if i < 0 || i >= len(v.Values) {
		return nil
	}
	return v.Values[i]
}

// ForecastAt reports whether index i is a forecast in this vintage.
// Indexes beyond the flag vector are treated as forecasts so they never count as actuals.
func (v Vintage) ForecastAt(i int) bool {
	if i < 0 || i >= len(v.IsForecast) {
		return true
	}
	return v.IsForecast[i]
}

// IndustrySeries is a model series with its forecast vintages
type IndustrySeries struct {
	ID           SeriesID  `json:"series_id"`
	Name         string    `json:"name"`
	Frequency    string    `json:"frequency,omitempty"`
	Dates        []string  `json:"dates"`
	History      []Vintage `json:"history"`
	BlockName    string    `json:"block_name,omitempty"`
	LastChecked  string    `json:"last_checked,omitempty"`
	LastRecorded string    `json:"last_recorded,omitempty"`
	LastUpdated  string    `json:"last_updated,omitempty"`
}

func (s *IndustrySeries) RecordID() SeriesID  { return s.ID }
func (s *IndustrySeries) DisplayName() string { return s.Name }
func (s *IndustrySeries) DateAxis() []string  { return s.Dates }
func (s *IndustrySeries) isSeriesRecord()     {}

// FindVintage returns the vintage produced on date
func (s *IndustrySeries) FindVintage(date string) (Vintage, bool) {
	for _, v := range s.History {
		if v.Date == date {
			return v, true
		}
	}
	return Vintage{}, false
}

// LatestVintage returns the most recent vintage (the last history entry)
func (s *IndustrySeries) LatestVintage() (Vintage, bool) {
	if len(s.History) == 0 {
		return Vintage{}, false
	}
	return s.History[len(s.History)-1], true
}

// VintageDates lists every vintage date in history order
func (s *IndustrySeries) VintageDates() []string {
	dates := make([]string, 0, len(s.History))
	for _, v := range s.History {
		dates = append(dates, v.Date)
	}
	return dates
}

// FredSeries is a flat macro series
type FredSeries struct {
	ID        SeriesID   `json:"series_id"`
	Name      string     `json:"name"`
	Frequency string     `json:"frequency,omitempty"`
	Dates     []string   `json:"dates"`
	Values    []*float64 `json:"values"`
}

func (s *FredSeries) RecordID() SeriesID  { return s.ID }
func (s *FredSeries) DisplayName() string { return s.Name }
func (s *FredSeries) DateAxis() []string  { return s.Dates }
func (s *FredSeries) isSeriesRecord()     {}

// RecordEnvelope carries a SeriesRecord through JSON (cache, API responses)
type RecordEnvelope struct {
	Kind     SeriesKind      `json:"kind"`
	Industry *IndustrySeries `json:"industry,omitempty"`
	Fred     *FredSeries     `json:"fred,omitempty"`
}

// Envelope wraps rec for serialization
func Envelope(rec SeriesRecord) RecordEnvelope {
	switch r := rec.(type) {
	case *IndustrySeries:
		return RecordEnvelope{Kind: KindIndustry, Industry: r}
	case *FredSeries:
		return RecordEnvelope{Kind: KindFred, Fred: r}
	default:
		return RecordEnvelope{}
	}
}

// Record unwraps the envelope
func (e RecordEnvelope) Record() (SeriesRecord, error) {
	switch e.Kind {
	case KindIndustry:
		if e.Industry == nil {
			return nil, &DataShapeError{Field: "industry", Reason: "missing payload"}
		}
		return e.Industry, nil
	case KindFred:
		if e.Fred == nil {
			return nil, &DataShapeError{Field: "fred", Reason: "missing payload"}
		}
		return e.Fred, nil
	default:
		return nil, &DataShapeError{Field: "kind", Reason: fmt.Sprintf("unknown record kind %q", e.Kind)}
	}
}

// MarshalRecord encodes rec inside an envelope
func MarshalRecord(rec SeriesRecord) ([]byte, error) {
	return json.Marshal(Envelope(rec))
}

// UnmarshalRecord decodes an envelope produced by MarshalRecord
func UnmarshalRecord(data []byte) (SeriesRecord, error) {
	var env RecordEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode record envelope: %w", err)
	}
	return env.Record()
}
