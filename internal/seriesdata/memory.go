package seriesdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// Memory is a Fetcher over records held in process.
// The render command uses it to draw charts from a records file without the backends.
type Memory struct {
	mu      sync.RWMutex
	records map[contracts.SeriesID]contracts.SeriesRecord
	fails   map[contracts.SeriesID]error
	calls   map[contracts.SeriesID]int
}

// NewMemory creates a Memory source holding recs
func NewMemory(recs ...contracts.SeriesRecord) *Memory {
	m := &Memory{
		records: make(map[contracts.SeriesID]contracts.SeriesRecord),
		fails:   make(map[contracts.SeriesID]error),
		calls:   make(map[contracts.SeriesID]int),
	}
	for _, rec := range recs {
		m.Put(rec)
	}
	return m
}

// LoadMemory reads a JSON array of record envelopes
func LoadMemory(r io.Reader) (*Memory, error) {
	var envs []contracts.RecordEnvelope
	if err := json.NewDecoder(r).Decode(&envs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	m := NewMemory()
	for i, env := range envs {
		rec, err := env.Record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		m.Put(rec)
	}
	return m, nil
}

// Put adds or replaces a record
func (m *Memory) Put(rec contracts.SeriesRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.RecordID()] = rec
}

// Fail makes every fetch of id return err
func (m *Memory) Fail(id contracts.SeriesID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails[id] = err
}

// Calls reports how often id was fetched
func (m *Memory) Calls(id contracts.SeriesID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[id]
}

// FetchSeries implements Fetcher
func (m *Memory) FetchSeries(ctx context.Context, id contracts.SeriesID) (contracts.SeriesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[id]++

	if err := m.fails[id]; err != nil {
		return nil, err
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, &contracts.NetworkError{
			URL:        id.String(),
			StatusCode: 404,
			Body:       fmt.Sprintf("series %s not found", id),
		}
	}
	return rec, nil
}
