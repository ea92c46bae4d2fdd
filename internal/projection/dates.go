package projection

import (
	"sort"
	"time"
)

// dateLayouts are tried in order when placing a date on the axis
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
	"01/02/2006",
	"2006-1-2",
	"1/2/2006",
	"2006-1",
	"2006",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnifyDates merges date axes into one chronological axis without duplicates.
// Dates are compared as exact strings for de-duplication. Unparseable dates sort
// after every parseable one, and ties fall back to string order.
func UnifyDates(axes ...[]string) []string {
	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, axis := range axes {
		for _, d := range axis {
			if seen[d] {
				continue
			}
			seen[d] = true
			dates = append(dates, d)
		}
	}

	type key struct {
		t  time.Time
		ok bool
	}
	keys := make(map[string]key, len(dates))
	for _, d := range dates {
		t, ok := parseDate(d)
		keys[d] = key{t: t, ok: ok}
	}

	sort.SliceStable(dates, func(i, j int) bool {
		a, b := keys[dates[i]], keys[dates[j]]
		switch {
		case a.ok && b.ok:
			if !a.t.Equal(b.t) {
				return a.t.Before(b.t)
			}
		case a.ok != b.ok:
			return a.ok
		}
		return dates[i] < dates[j]
	})

	return dates
}

// align spreads values keyed by date onto the unified axis; missing dates stay nil
func align(axis []string, byDate map[string]*float64) []*float64 {
	out := make([]*float64, len(axis))
	for i, d := range axis {
		if v, ok := byDate[d]; ok && v != nil {
			val := *v
			out[i] = &val
		}
	}
	return out
}
