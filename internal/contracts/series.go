package contracts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SeriesKind is the backend a series belongs to
type SeriesKind string

const (
	// KindIndustry series come from the Industry model service (numeric IDs)
	KindIndustry SeriesKind = "Industry"
	// KindFred series come from the FRED-like macro service (string codes)
	KindFred SeriesKind = "FRED"
)

// SeriesID identifies a series together with its classification.
// ⭐ SSOT: Industry/FRED 분류는 ParseSeriesID에서 한 번만 결정
//
// The zero value is not a valid ID. SeriesID is comparable and can be used as a map key.
type SeriesID struct {
	raw  string
	kind SeriesKind
}

// ParseSeriesID trims raw and classifies it: an all-digit string is Industry, anything else FRED
func ParseSeriesID(raw string) (SeriesID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SeriesID{}, fmt.Errorf("series id is empty")
	}

	kind := KindFred
	if isAllDigits(trimmed) {
		kind = KindIndustry
	}

	return SeriesID{raw: trimmed, kind: kind}, nil
}

// MustSeriesID is ParseSeriesID for literals; it panics on an empty ID
func MustSeriesID(raw string) SeriesID {
	id, err := ParseSeriesID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseSeriesIDList parses the viewer's comma separated seriesIds parameter.
// Empty entries are dropped and duplicates collapsed, keeping first-seen order.
func ParseSeriesIDList(list string) []SeriesID {
	ids := make([]SeriesID, 0)
	seen := make(map[SeriesID]bool)

	for _, part := range strings.Split(list, ",") {
		id, err := ParseSeriesID(part)
		if err != nil {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// String returns the ID as the backends know it
func (id SeriesID) String() string { return id.raw }

// Kind returns the classification fixed at parse time
func (id SeriesID) Kind() SeriesKind { return id.kind }

// IsIndustry reports whether the series is served by the Industry backend
func (id SeriesID) IsIndustry() bool { return id.kind == KindIndustry }

// IsZero reports whether id was never parsed
func (id SeriesID) IsZero() bool { return id.raw == "" }

// MarshalText implements encoding.TextMarshaler so SeriesID works as a JSON map key
func (id SeriesID) MarshalText() ([]byte, error) {
	return []byte(id.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *SeriesID) UnmarshalText(text []byte) error {
	parsed, err := ParseSeriesID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// RawID accepts a JSON string or number. The Industry backend sends numeric series_id values.
type RawID string

// UnmarshalJSON implements json.Unmarshaler
func (r *RawID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RawID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*r = RawID(n.String())
	return nil
}

// Int returns the numeric value, used for Industry model IDs
func (r RawID) Int() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(r)), 10, 64)
}
