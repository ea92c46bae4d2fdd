package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// ErrNotFound is returned when no view is saved under a name
var ErrNotFound = errors.New("saved view not found")

const maxNameLength = 200

// SavedView is a committed view state stored under a name
type SavedView struct {
	Name      string              `json:"name"`
	State     contracts.ViewState `json:"state"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Repository stores saved views. Saving an existing name overwrites it.
type Repository interface {
	Save(ctx context.Context, name string, state contracts.ViewState) (SavedView, error)
	Get(ctx context.Context, name string) (SavedView, error)
	List(ctx context.Context) ([]SavedView, error)
	Delete(ctx context.Context, name string) error
}

// NormalizeName trims a view name and rejects empty or oversized ones
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("view name is empty")
	}
	if len(name) > maxNameLength {
		return "", fmt.Errorf("view name longer than %d bytes", maxNameLength)
	}
	return name, nil
}

// MemoryRepository keeps saved views in process memory
type MemoryRepository struct {
	mu    sync.RWMutex
	views map[string]SavedView
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		views: make(map[string]SavedView),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Save(ctx context.Context, name string, state contracts.ViewState) (SavedView, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return SavedView{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	view := SavedView{Name: name, State: state.Clone(), CreatedAt: now, UpdatedAt: now}
	if existing, ok := r.views[name]; ok {
		view.CreatedAt = existing.CreatedAt
	}
	r.views[name] = view

	return cloneView(view), nil
}

func (r *MemoryRepository) Get(ctx context.Context, name string) (SavedView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view, ok := r.views[strings.TrimSpace(name)]
	if !ok {
		return SavedView{}, ErrNotFound
	}
	return cloneView(view), nil
}

// List returns views newest first
func (r *MemoryRepository) List(ctx context.Context) ([]SavedView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SavedView, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, cloneView(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if _, ok := r.views[name]; !ok {
		return ErrNotFound
	}
	delete(r.views, name)
	return nil
}

func cloneView(v SavedView) SavedView {
	v.State = v.State.Clone()
	return v
}
