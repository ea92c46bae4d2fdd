package catalog

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
	"github.com/draeangela/industry-data-visualizer/pkg/redis"
)

// AllModelsName labels the pseudo model that lists every dataset
const AllModelsName = "All Models"

// Source provides the raw sector and model listings
type Source interface {
	FetchSectors(ctx context.Context) []contracts.Sector
	FetchSectorSeries(ctx context.Context, sector string) ([]contracts.SearchResult, error)
	FetchIndustryModels(ctx context.Context) []contracts.IndustryModel
}

// Snapshot is the catalog content at one refresh
type Snapshot struct {
	Sectors     []contracts.Sector        `json:"sectors"`
	Models      []contracts.IndustryModel `json:"models"`
	RefreshedAt time.Time                 `json:"refreshed_at"`
}

// SectorListing is the series list of one sector page
type SectorListing struct {
	Sector      string                   `json:"sector"`
	DisplayName string                   `json:"display_name"`
	Series      []contracts.SearchResult `json:"series"`
}

// Catalog keeps sector and model menus warm in memory and in Redis
// ⭐ SSOT: 섹터/모델 목록 캐시는 여기서만
type Catalog struct {
	source Source
	cache  *redis.Cache
	logger *logger.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

// New creates a catalog. cache may be nil.
func New(source Source, cache *redis.Cache, log *logger.Logger) *Catalog {
	return &Catalog{
		source: source,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// Refresh reloads both listings from the source.
// Listings fail soft, so an empty result keeps the previous content.
func (c *Catalog) Refresh(ctx context.Context) Snapshot {
	sectors := c.source.FetchSectors(ctx)
	models := c.source.FetchIndustryModels(ctx)

	c.mu.Lock()
	if len(sectors) > 0 {
		c.snapshot.Sectors = sectors
		c.store(ctx, redis.SectorsKey(), sectors)
	}
	if len(models) > 0 {
		c.snapshot.Models = models
		c.store(ctx, redis.ModelsKey(), models)
	}
	c.snapshot.RefreshedAt = c.now()
	snap := c.copyLocked()
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"sectors": len(snap.Sectors),
		"models":  len(snap.Models),
	}).Info("Catalog refreshed")

	return snap
}

// Snapshot returns the in-memory content without touching the source
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked()
}

// Sectors lists FRED sectors, loading them on first use
func (c *Catalog) Sectors(ctx context.Context) []contracts.Sector {
	c.mu.RLock()
	sectors := c.snapshot.Sectors
	c.mu.RUnlock()
	if len(sectors) > 0 {
		return append([]contracts.Sector(nil), sectors...)
	}

	var cached []contracts.Sector
	if c.load(ctx, redis.SectorsKey(), &cached) && len(cached) > 0 {
		c.mu.Lock()
		c.snapshot.Sectors = cached
		c.mu.Unlock()
		return append([]contracts.Sector(nil), cached...)
	}

	sectors = c.source.FetchSectors(ctx)
	if len(sectors) > 0 {
		c.mu.Lock()
		c.snapshot.Sectors = sectors
		c.mu.Unlock()
		c.store(ctx, redis.SectorsKey(), sectors)
	}
	return append([]contracts.Sector{}, sectors...)
}

// Models lists Industry models, loading them on first use
func (c *Catalog) Models(ctx context.Context) []contracts.IndustryModel {
	c.mu.RLock()
	models := c.snapshot.Models
	c.mu.RUnlock()
	if len(models) > 0 {
		return append([]contracts.IndustryModel(nil), models...)
	}

	var cached []contracts.IndustryModel
	if c.load(ctx, redis.ModelsKey(), &cached) && len(cached) > 0 {
		c.mu.Lock()
		c.snapshot.Models = cached
		c.mu.Unlock()
		return append([]contracts.IndustryModel(nil), cached...)
	}

	models = c.source.FetchIndustryModels(ctx)
	if len(models) > 0 {
		c.mu.Lock()
		c.snapshot.Models = models
		c.mu.Unlock()
		c.store(ctx, redis.ModelsKey(), models)
	}
	return append([]contracts.IndustryModel{}, models...)
}

// ModelMenu is the model dropdown: "All Models" first, then every model
func (c *Catalog) ModelMenu(ctx context.Context) []contracts.IndustryModel {
	models := c.Models(ctx)
	menu := make([]contracts.IndustryModel, 0, len(models)+1)
	menu = append(menu, contracts.IndustryModel{ID: contracts.AllModelsID, Name: AllModelsName})
	return append(menu, models...)
}

// ModelName resolves a model id to its menu name
func (c *Catalog) ModelName(ctx context.Context, id string) (string, bool) {
	if id == contracts.AllModelsID {
		return AllModelsName, true
	}
	for _, m := range c.Models(ctx) {
		if m.ID == id {
			return m.Name, true
		}
	}
	return "", false
}

// SectorSeries lists the series of a sector.
// raw may be a URL form like "consumer_goods"; it is normalised before the lookup.
func (c *Catalog) SectorSeries(ctx context.Context, raw string) (SectorListing, error) {
	name := DisplayName(raw)
	listing := SectorListing{Sector: name, DisplayName: name}

	var cached []contracts.SearchResult
	if c.load(ctx, redis.SectorSeriesKey(name), &cached) {
		listing.Series = cached
		return listing, nil
	}

	series, err := c.source.FetchSectorSeries(ctx, name)
	if err != nil {
		return SectorListing{}, err
	}
	if series == nil {
		series = []contracts.SearchResult{}
	}

	c.store(ctx, redis.SectorSeriesKey(name), series)
	listing.Series = series
	return listing, nil
}

func (c *Catalog) copyLocked() Snapshot {
	return Snapshot{
		Sectors:     append([]contracts.Sector{}, c.snapshot.Sectors...),
		Models:      append([]contracts.IndustryModel{}, c.snapshot.Models...),
		RefreshedAt: c.snapshot.RefreshedAt,
	}
}

func (c *Catalog) load(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	found, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
		return false
	}
	return found
}

func (c *Catalog) store(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, redis.TTLLong); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Catalog cache write failed")
	}
}

// DisplayName turns a sector identifier from a URL into its display form:
// underscores become spaces and each word starts upper case.
func DisplayName(raw string) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	words := strings.Split(strings.ReplaceAll(raw, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ViewerLink builds the viewer URL that opens the given series
func ViewerLink(base string, ids []contracts.SeriesID) string {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		raw = append(raw, id.String())
	}

	q := url.Values{}
	q.Set("seriesIds", strings.Join(raw, ","))

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.ReplaceAll(q.Encode(), "%2C", ",")
}
