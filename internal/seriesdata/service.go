package seriesdata

import (
	"context"
	"fmt"
	"time"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
	"github.com/draeangela/industry-data-visualizer/pkg/redis"
)

// Fetcher loads one series record
type Fetcher interface {
	FetchSeries(ctx context.Context, id contracts.SeriesID) (contracts.SeriesRecord, error)
}

// IndustryBackend is the subset of the Industry client the data layer uses
type IndustryBackend interface {
	SeriesHistory(ctx context.Context, id contracts.SeriesID) (*contracts.IndustrySeries, error)
	ModelSeries(ctx context.Context, modelID string) (contracts.ModelSeries, error)
	SearchDatasets(ctx context.Context, query string) ([]contracts.SearchResult, error)
	Models(ctx context.Context) ([]contracts.IndustryModel, error)
}

// FredBackend is the subset of the FRED client the data layer uses
type FredBackend interface {
	Series(ctx context.Context, id contracts.SeriesID) (*contracts.FredSeries, error)
	Sectors(ctx context.Context) ([]contracts.Sector, error)
	SectorSeries(ctx context.Context, sector string) ([]contracts.SearchResult, error)
	SearchAllSeries(ctx context.Context, query string) ([]contracts.SearchResult, error)
	GlobalSearch(ctx context.Context, query string) ([]contracts.SearchResult, error)
}

// Service is the data access layer over both backends
// ⭐ SSOT: Industry/FRED 분기는 여기서만 (SeriesID.Kind 기준)
type Service struct {
	industry IndustryBackend
	fred     FredBackend
	cache    *redis.Cache
	ttl      time.Duration
	logger   *logger.Logger
}

// NewService creates the data access layer. cache may be nil.
func NewService(industry IndustryBackend, fred FredBackend, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &Service{
		industry: industry,
		fred:     fred,
		cache:    cache,
		ttl:      ttl,
		logger:   log,
	}
}

// FetchSeries loads a series from the backend its ID belongs to
func (s *Service) FetchSeries(ctx context.Context, id contracts.SeriesID) (contracts.SeriesRecord, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("fetch series: empty series id")
	}

	if rec, ok := s.cached(ctx, id); ok {
		return rec, nil
	}

	var rec contracts.SeriesRecord
	var err error
	switch id.Kind() {
	case contracts.KindIndustry:
		var series *contracts.IndustrySeries
		series, err = s.industry.SeriesHistory(ctx, id)
		rec = series
	default:
		var series *contracts.FredSeries
		series, err = s.fred.Series(ctx, id)
		rec = series
	}
	if err != nil {
		return nil, err
	}

	s.store(ctx, id, rec)
	return rec, nil
}

func (s *Service) cached(ctx context.Context, id contracts.SeriesID) (contracts.SeriesRecord, bool) {
	if s.cache == nil {
		return nil, false
	}

	var env contracts.RecordEnvelope
	found, err := s.cache.Get(ctx, redis.SeriesKey(id.String()), &env)
	if err != nil {
		s.logger.WithError(err).WithField("series_id", id.String()).Warn("Series cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	rec, err := env.Record()
	if err != nil {
		s.logger.WithError(err).WithField("series_id", id.String()).Warn("Discarding malformed cached series")
		return nil, false
	}
	return rec, true
}

func (s *Service) store(ctx context.Context, id contracts.SeriesID, rec contracts.SeriesRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, redis.SeriesKey(id.String()), contracts.Envelope(rec), s.ttl); err != nil {
		s.logger.WithError(err).WithField("series_id", id.String()).Warn("Series cache write failed")
	}
}

// FetchSectors lists FRED sectors. Failures are logged and yield an empty list.
func (s *Service) FetchSectors(ctx context.Context) []contracts.Sector {
	sectors, err := s.fred.Sectors(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fetch sectors")
		return []contracts.Sector{}
	}
	return sectors
}

// FetchSectorSeries lists the series of one sector
func (s *Service) FetchSectorSeries(ctx context.Context, sector string) ([]contracts.SearchResult, error) {
	return s.fred.SectorSeries(ctx, sector)
}

// FetchModelSeries lists the series of one Industry model
func (s *Service) FetchModelSeries(ctx context.Context, modelID string) (contracts.ModelSeries, error) {
	return s.industry.ModelSeries(ctx, modelID)
}

// FetchIndustryModels lists Industry models. Failures are logged and yield an empty list.
func (s *Service) FetchIndustryModels(ctx context.Context) []contracts.IndustryModel {
	models, err := s.industry.Models(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fetch industry models")
		return []contracts.IndustryModel{}
	}
	return models
}

// SearchSectorSeries runs the sector-aware FRED search
func (s *Service) SearchSectorSeries(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return s.fred.SearchAllSeries(ctx, query)
}

// SearchGlobal runs the unrestricted FRED search
func (s *Service) SearchGlobal(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return s.fred.GlobalSearch(ctx, query)
}

// SearchDatasets runs the Industry dataset search
func (s *Service) SearchDatasets(ctx context.Context, query string) ([]contracts.SearchResult, error) {
	return s.industry.SearchDatasets(ctx, query)
}
