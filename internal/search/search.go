package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
	"github.com/draeangela/industry-data-visualizer/pkg/redis"
)

// Mode selects which backend a search runs against
type Mode string

const (
	// ModeSectorSeries searches FRED series, optionally narrowed to one sector
	ModeSectorSeries Mode = "sector"
	// ModeGlobalFred searches all of FRED
	ModeGlobalFred Mode = "global"
	// ModeIndustryModel lists the series of the selected Industry model
	ModeIndustryModel Mode = "model"
	// ModeIndustryDatasets runs the Industry dataset search
	ModeIndustryDatasets Mode = "datasets"
)

// AllSectors is the sector id that disables sector narrowing
const AllSectors = "all"

// ParseMode accepts the mode names and the dashboard's search type names
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sector", "fredsectors", "":
		return ModeSectorSeries, nil
	case "global", "globalfred":
		return ModeGlobalFred, nil
	case "model", "industry":
		return ModeIndustryModel, nil
	case "datasets":
		return ModeIndustryDatasets, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

// Query is one search request
type Query struct {
	Mode     Mode   `json:"mode"`
	Text     string `json:"q"`
	SectorID string `json:"sector,omitempty"`
	ModelID  string `json:"model,omitempty"`
}

func (q Query) filterKey() string {
	switch q.Mode {
	case ModeSectorSeries:
		return q.SectorID
	case ModeIndustryModel:
		return q.ModelID
	default:
		return ""
	}
}

// Hit is a search result with its ID already classified
type Hit struct {
	SeriesID  contracts.SeriesID `json:"series_id"`
	Label     string             `json:"label"`
	Display   string             `json:"display"`
	SectorID  string             `json:"sector_id,omitempty"`
	Frequency string             `json:"frequency,omitempty"`
}

// Response is the outcome of a search
type Response struct {
	Query   Query  `json:"query"`
	Hits    []Hit  `json:"hits"`
	Warning string `json:"warning,omitempty"`
}

// Backend is the data layer surface searches run against
type Backend interface {
	SearchSectorSeries(ctx context.Context, query string) ([]contracts.SearchResult, error)
	SearchGlobal(ctx context.Context, query string) ([]contracts.SearchResult, error)
	SearchDatasets(ctx context.Context, query string) ([]contracts.SearchResult, error)
	FetchModelSeries(ctx context.Context, modelID string) (contracts.ModelSeries, error)
}

// Searcher runs searches and narrows their results
type Searcher struct {
	backend Backend
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewSearcher creates a searcher. cache may be nil.
func NewSearcher(backend Backend, cache *redis.Cache, log *logger.Logger) *Searcher {
	return &Searcher{
		backend: backend,
		cache:   cache,
		logger:  log,
	}
}

// Search queries the backend for q.Mode and applies the text, sector and model narrowing
func (s *Searcher) Search(ctx context.Context, q Query) (Response, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Mode == "" {
		q.Mode = ModeSectorSeries
	}

	key := redis.SearchKey(string(q.Mode), q.Text, q.filterKey())
	if s.cache != nil {
		var cached Response
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Search cache read failed")
		} else if found {
			return cached, nil
		}
	}

	resp := Response{Query: q, Hits: []Hit{}}

	var results []contracts.SearchResult
	var err error
	switch q.Mode {
	case ModeSectorSeries:
		results, err = s.backend.SearchSectorSeries(ctx, q.Text)
		results = FilterBySector(results, q.SectorID)
	case ModeGlobalFred:
		results, err = s.backend.SearchGlobal(ctx, q.Text)
	case ModeIndustryDatasets:
		results, err = s.backend.SearchDatasets(ctx, q.Text)
	case ModeIndustryModel:
		modelID := strings.TrimSpace(q.ModelID)
		switch modelID {
		case "":
			resp.Warning = "no industry model selected"
			s.logger.Warn("Model search without a selected model")
			return resp, nil
		case contracts.AllModelsID:
			results, err = s.backend.SearchDatasets(ctx, q.Text)
		default:
			var model contracts.ModelSeries
			model, err = s.backend.FetchModelSeries(ctx, modelID)
			results = model.Series
		}
	default:
		return resp, fmt.Errorf("unknown search mode %q", q.Mode)
	}
	if err != nil {
		return resp, fmt.Errorf("search %s: %w", q.Mode, err)
	}

	resp.Hits = toHits(Filter(results, q.Text), s.logger)

	s.logger.WithFields(map[string]interface{}{
		"mode":    q.Mode,
		"query":   q.Text,
		"fetched": len(results),
		"hits":    len(resp.Hits),
	}).Debug("Search completed")

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, redis.TTLShort); err != nil {
			s.logger.WithError(err).Warn("Search cache write failed")
		}
	}
	return resp, nil
}

// Filter keeps results whose description, name or ID contains query, case-insensitively.
// An empty query keeps everything.
func Filter(results []contracts.SearchResult, query string) []contracts.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]contracts.SearchResult, 0, len(results))
	for _, r := range results {
		if q == "" ||
			strings.Contains(strings.ToLower(string(r.SeriesID)), q) ||
			strings.Contains(strings.ToLower(r.SeriesDescription), q) ||
			strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// FilterBySector keeps results of one sector; an empty or "all" sector keeps everything
func FilterBySector(results []contracts.SearchResult, sectorID string) []contracts.SearchResult {
	sectorID = strings.TrimSpace(sectorID)
	if sectorID == "" || sectorID == AllSectors {
		return results
	}
	out := make([]contracts.SearchResult, 0, len(results))
	for _, r := range results {
		if r.SectorID == sectorID {
			out = append(out, r)
		}
	}
	return out
}

func toHits(results []contracts.SearchResult, log *logger.Logger) []Hit {
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		id, err := r.ID()
		if err != nil {
			log.WithField("label", r.Label()).Debug("Skipping search result without series id")
			continue
		}
		hits = append(hits, Hit{
			SeriesID:  id,
			Label:     r.Label(),
			Display:   fmt.Sprintf("%s (ID: %s)", r.Label(), id),
			SectorID:  r.SectorID,
			Frequency: r.Frequency,
		})
	}
	return hits
}
