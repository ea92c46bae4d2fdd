package search

import (
	"context"
	"sync"
	"time"

	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// DefaultDebounceWindow is the quiet period before a query is sent
const DefaultDebounceWindow = 300 * time.Millisecond

// Runner executes one search
type Runner interface {
	Search(ctx context.Context, q Query) (Response, error)
}

// Delivery is a search result handed to the subscriber
type Delivery struct {
	Generation uint64
	Response   Response
	Err        error
}

// Debouncer delays queries until input settles and delivers only the newest result.
// Submitting a query cancels the pending timer and any in-flight search; a response
// whose generation is no longer current is dropped instead of delivered.
type Debouncer struct {
	window  time.Duration
	runner  Runner
	deliver func(Delivery)
	logger  *logger.Logger

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewDebouncer creates a debouncer; window <= 0 uses DefaultDebounceWindow
func NewDebouncer(window time.Duration, runner Runner, deliver func(Delivery), log *logger.Logger) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window:  window,
		runner:  runner,
		deliver: deliver,
		logger:  log,
	}
}

// Submit schedules q and returns its generation
func (d *Debouncer) Submit(q Query) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.gen
	}

	d.stopLocked()
	d.gen++
	gen := d.gen

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.window, func() {
		d.run(ctx, gen, q)
	})
	return gen
}

// Generation returns the newest submitted generation
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Close cancels pending and in-flight work; later submits are ignored
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) run(ctx context.Context, gen uint64, q Query) {
	resp, err := d.runner.Search(ctx, q)

	d.mu.Lock()
	current := gen == d.gen && !d.closed
	d.mu.Unlock()

	if !current {
		d.logger.WithFields(map[string]interface{}{
			"generation": gen,
			"query":      q.Text,
		}).Debug("Discarding stale search response")
		return
	}

	d.deliver(Delivery{Generation: gen, Response: resp, Err: err})
}
