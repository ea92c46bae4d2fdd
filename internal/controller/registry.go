package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/seriesdata"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// DefaultTitle is used when no series name is available and when an applied title is empty
const DefaultTitle = "Untitled View"

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("view session not found")

// Registry owns every open view session
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	fetcher      seriesdata.Fetcher
	projector    Projector
	defaultTitle string
	idleTTL      time.Duration
	logger       *logger.Logger

	newID func() string
	now   func() time.Time
}

// NewRegistry creates a session registry. idleTTL <= 0 disables expiry.
func NewRegistry(fetcher seriesdata.Fetcher, projector Projector, defaultTitle string, idleTTL time.Duration, log *logger.Logger) *Registry {
	if defaultTitle == "" {
		defaultTitle = DefaultTitle
	}
	return &Registry{
		sessions:     make(map[string]*Session),
		fetcher:      fetcher,
		projector:    projector,
		defaultTitle: defaultTitle,
		idleTTL:      idleTTL,
		logger:       log,
		newID:        func() string { return uuid.New().String() },
		now:          time.Now,
	}
}

// Create opens a session for the viewer's initial series list
func (r *Registry) Create(ctx context.Context, ids []contracts.SeriesID) (*Session, error) {
	initial, err := InitialState(ctx, r.fetcher, ids, r.defaultTitle, r.logger)
	if err != nil {
		return nil, err
	}
	return r.Open(initial), nil
}

// Open starts a session from an existing state, e.g. a saved view
func (r *Registry) Open(st contracts.ViewState) *Session {
	s := newSession(r.newID(), st, r.defaultTitle, r.projector, r.logger, r.now)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.WithFields(map[string]interface{}{
		"session":  s.ID(),
		"series":   len(st.SelectedSeriesIDs),
		"sessions": total,
	}).Info("View session opened")

	return s
}

// Get returns an open session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || s.Closed() {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close ends one session
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	s.Close()
	return nil
}

// Sweep closes sessions idle for longer than the TTL and returns how many were closed
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.IdleFor(now) > r.idleTTL {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.WithField("expired", len(expired)).Info("Idle view sessions closed")
	}
	return len(expired)
}

// IDs lists open session ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll ends every session
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// InitialState builds the committed state a viewer opens with.
// Every id starts visible. Industry series default to their most recent vintage,
// or to no vintage when the fetch fails. The title is the first fetched series name,
// suffixed " & OTHERS" when more than one id was requested.
// Only ctx cancellation is returned as an error.
func InitialState(ctx context.Context, fetcher seriesdata.Fetcher, ids []contracts.SeriesID, defaultTitle string, log *logger.Logger) (contracts.ViewState, error) {
	if defaultTitle == "" {
		defaultTitle = DefaultTitle
	}
	st := contracts.NewViewState(defaultTitle)

	firstName := ""
	for _, id := range ids {
		if st.Contains(id) {
			continue
		}
		st.SelectedSeriesIDs = append(st.SelectedSeriesIDs, id)
		st.Visibility[id] = true
		if id.IsIndustry() {
			st.SelectedForecasts[id] = []string{}
		}

		rec, err := fetcher.FetchSeries(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return contracts.ViewState{}, fmt.Errorf("initial state: %w", ctx.Err())
			}
			log.WithError(err).WithField("series_id", id.String()).Warn("Failed to fetch series for initial view")
			continue
		}

		if firstName == "" {
			firstName = rec.DisplayName()
		}
		if ind, ok := rec.(*contracts.IndustrySeries); ok {
			if latest, ok := ind.LatestVintage(); ok {
				st.SelectedForecasts[id] = []string{latest.Date}
			} else {
				log.WithField("series_id", id.String()).Warn("No history for series, no default forecast")
			}
		}
	}

	if firstName != "" {
		st.ViewTitle = firstName
		if len(st.SelectedSeriesIDs) > 1 {
			st.ViewTitle = firstName + " & OTHERS"
		}
	}

	return st, nil
}
