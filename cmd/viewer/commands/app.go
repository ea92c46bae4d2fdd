package commands

import (
	"fmt"

	"github.com/draeangela/industry-data-visualizer/internal/catalog"
	"github.com/draeangela/industry-data-visualizer/internal/external/backend"
	"github.com/draeangela/industry-data-visualizer/internal/external/fred"
	"github.com/draeangela/industry-data-visualizer/internal/external/industry"
	"github.com/draeangela/industry-data-visualizer/internal/palette"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
	"github.com/draeangela/industry-data-visualizer/internal/search"
	"github.com/draeangela/industry-data-visualizer/internal/seriesdata"
	"github.com/draeangela/industry-data-visualizer/pkg/config"
	"github.com/draeangela/industry-data-visualizer/pkg/httputil"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
	"github.com/draeangela/industry-data-visualizer/pkg/redis"
)

const cachePrefix = "viewer"

// app holds the wiring shared by every command
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	redis *redis.Client
	cache *redis.Cache

	data     *seriesdata.Service
	engine   *projection.Engine
	catalog  *catalog.Catalog
	searcher *search.Searcher
}

// loadConfig reads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp connects the backends, the optional Redis cache and the domain services
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rc, cachePrefix)

	industryHTTP := httputil.NewForBackend(cfg.Industry, log)
	fredHTTP := httputil.NewForBackend(cfg.Fred, log)
	if rc.Enabled() {
		// replicas share one budget per backend
		limiter := redis.NewRateLimiter(rc, cachePrefix)
		if cfg.Industry.RateLimit > 0 {
			industryHTTP.WithLimiter(limiter.For(redis.BackendRateLimit(redis.IndustryLimitKey, cfg.Industry)))
		}
		if cfg.Fred.RateLimit > 0 {
			fredHTTP.WithLimiter(limiter.For(redis.BackendRateLimit(redis.FredLimitKey, cfg.Fred)))
		}
	}

	industryClient := industry.NewClient(backend.New(cfg.Industry.BaseURL, industryHTTP, log), log)
	fredClient := fred.NewClient(backend.New(cfg.Fred.BaseURL, fredHTTP, log), log)

	data := seriesdata.NewService(industryClient, fredClient, cache, cfg.Redis.SeriesTTL, log)

	log.WithFields(map[string]interface{}{
		"industry": cfg.Industry.BaseURL,
		"fred":     cfg.Fred.BaseURL,
		"redis":    rc.Enabled(),
	}).Debug("Backends configured")

	return &app{
		cfg:      cfg,
		log:      log,
		redis:    rc,
		cache:    cache,
		data:     data,
		engine:   projection.NewEngine(data, palette.New(nil), log),
		catalog:  catalog.New(data, cache, log),
		searcher: search.NewSearcher(data, cache, log),
	}, nil
}

// Close releases the connections opened by newApp
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
