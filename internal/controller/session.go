package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
	"github.com/draeangela/industry-data-visualizer/internal/viewstate"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

var (
	ErrSeriesNotSelected = viewstate.ErrSeriesNotSelected
	ErrNotIndustry       = viewstate.ErrNotIndustry
	ErrNoDraft           = viewstate.ErrNoDraft
	// ErrSessionClosed is returned by commands sent to a closed or expired session
	ErrSessionClosed = errors.New("view session is closed")
)

// Projector renders a view state into chart series
type Projector interface {
	Project(ctx context.Context, ids []contracts.SeriesID, st contracts.ViewState) (projection.Result, error)
}

// Snapshot is a session's state as seen by clients
type Snapshot struct {
	ID         string               `json:"id"`
	Committed  contracts.ViewState  `json:"committed"`
	Draft      *contracts.ViewState `json:"draft,omitempty"`
	EditorOpen bool                 `json:"editor_open"`
}

// Outcome is the result of one command
type Outcome struct {
	State   Snapshot           `json:"state"`
	Chart   *projection.Result `json:"chart,omitempty"`
	Changed bool               `json:"changed"`
}

// queries served by the command loop so reads see a consistent state
type chartQuery struct{}
type stateQuery struct{}

func (chartQuery) Name() string { return "chart" }
func (stateQuery) Name() string { return "state" }

type request struct {
	ctx   context.Context
	cmd   Command
	reply chan response
}

type response struct {
	out Outcome
	err error
}

// Session is one open chart view.
// ⭐ SSOT: 세션 상태 변경은 run() 고루틴 하나에서만 (단일 논리 스레드)
type Session struct {
	id        string
	store     *viewstate.Store
	projector Projector
	logger    *logger.Logger

	requests  chan request
	done      chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	lastUsed    time.Time
	subscribers map[int]chan projection.Result
	nextSub     int
	now         func() time.Time
}

func newSession(id string, initial contracts.ViewState, defaultTitle string, projector Projector, log *logger.Logger, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		store:       viewstate.NewStore(initial, defaultTitle),
		projector:   projector,
		logger:      log,
		requests:    make(chan request),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan projection.Result),
		now:         now,
		lastUsed:    now(),
	}
	go s.run()
	return s
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Dispatch sends cmd to the session loop and waits for its outcome
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if s.Closed() {
		return Outcome{}, ErrSessionClosed
	}
	s.touch()

	req := request{ctx: ctx, cmd: cmd, reply: make(chan response, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return Outcome{}, ErrSessionClosed
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.out, resp.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Chart projects the committed state
func (s *Session) Chart(ctx context.Context) (projection.Result, error) {
	out, err := s.Dispatch(ctx, chartQuery{})
	if err != nil {
		return projection.Result{}, err
	}
	return *out.Chart, nil
}

// State returns the committed and draft state
func (s *Session) State(ctx context.Context) (Snapshot, error) {
	out, err := s.Dispatch(ctx, stateQuery{})
	if err != nil {
		return Snapshot{}, err
	}
	return out.State, nil
}

// Subscribe returns a channel receiving every chart re-projected by apply,
// plot mode or chart type changes. Slow readers only see the newest chart.
func (s *Session) Subscribe() (<-chan projection.Result, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan projection.Result, 1)
	select {
	case <-s.done:
		close(ch)
		return ch, func() {}
	default:
	}

	key := s.nextSub
	s.nextSub++
	s.subscribers[key] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[key]; ok {
			delete(s.subscribers, key)
			close(sub)
		}
	}
	return ch, cancel
}

// Close stops the command loop and ends every subscription
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		close(s.done)
		for key, ch := range s.subscribers {
			delete(s.subscribers, key)
			close(ch)
		}
	})
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// IdleFor reports how long the session has gone without a command
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *Session) run() {
	for {
		select {
		case req := <-s.requests:
			out, err := s.handle(req.ctx, req.cmd)
			req.reply <- response{out: out, err: err}
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, cmd Command) (Outcome, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"session": s.id,
		"command": cmd.Name(),
	})

	var (
		changed bool
		reproj  bool
		publish bool
	)

	switch c := cmd.(type) {
	case OpenEditor:
		s.store.OpenEditor()
		changed = true

	case AddSeries:
		added, err := s.store.AddSeries(c.ID)
		if err != nil {
			return s.fail(log, err)
		}
		if !added {
			log.WithField("series_id", c.ID.String()).Debug("Series already selected")
		}
		changed = added

	case ToggleVisibility:
		visible, err := s.store.ToggleVisibility(c.ID)
		if err != nil {
			return s.fail(log, err)
		}
		log.WithFields(map[string]interface{}{
			"series_id": c.ID.String(),
			"visible":   visible,
		}).Debug("Visibility toggled")
		changed = true

	case DeleteSeries:
		if err := s.store.DeleteSeries(c.ID); err != nil {
			return s.fail(log, err)
		}
		changed = true

	case SelectForecastDate:
		if _, err := s.store.SelectForecast(c.ID, c.Date, c.Toggle); err != nil {
			return s.fail(log, err)
		}
		changed = true

	case SetViewTitle:
		if err := s.store.SetViewTitle(c.Title); err != nil {
			return s.fail(log, err)
		}
		changed = true

	case SetPlotMode:
		s.store.SetPlotMode(c.Mode)
		changed, reproj, publish = true, true, true

	case SetChartType:
		s.store.SetChartType(c.Type)
		changed, reproj, publish = true, true, true

	case ApplyChanges:
		if _, err := s.store.Apply(); err != nil {
			return s.fail(log, err)
		}
		changed, reproj, publish = true, true, true

	case DiscardChanges:
		changed = s.store.EditorOpen()
		s.store.Discard()

	case chartQuery:
		reproj = true

	case stateQuery:

	default:
		return Outcome{}, fmt.Errorf("unsupported command %T", cmd)
	}

	out := Outcome{State: s.snapshot(), Changed: changed}

	if reproj {
		committed := s.store.Committed()
		chart, err := s.projector.Project(ctx, committed.SelectedSeriesIDs, committed)
		if err != nil {
			return out, fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		out.Chart = &chart
		if publish {
			s.publish(chart)
		}
	}

	if changed {
		log.Debug("Command applied")
	}
	return out, nil
}

func (s *Session) fail(log *logger.Logger, err error) (Outcome, error) {
	log.WithError(err).Warn("Command rejected")
	return Outcome{State: s.snapshot()}, err
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		Committed:  s.store.Committed(),
		EditorOpen: s.store.EditorOpen(),
	}
	if d, ok := s.store.Draft(); ok {
		snap.Draft = &d
	}
	return snap
}

func (s *Session) publish(chart projection.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- chart:
			continue
		default:
		}
		// replace the unread chart with the newer one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- chart:
		default:
		}
	}
}
