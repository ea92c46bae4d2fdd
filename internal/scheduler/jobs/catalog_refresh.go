package jobs

import (
	"context"
	"errors"

	"github.com/draeangela/industry-data-visualizer/internal/catalog"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// ErrEmptyCatalog is returned when neither backend listed anything
var ErrEmptyCatalog = errors.New("catalog refresh returned no sectors and no models")

// Refresher reloads the sector and model menus
type Refresher interface {
	Refresh(ctx context.Context) catalog.Snapshot
}

// CatalogRefreshJob keeps the sector and model menus warm
type CatalogRefreshJob struct {
	catalog  Refresher
	schedule string
	logger   *logger.Logger
}

// NewCatalogRefreshJob creates the job. An empty schedule means every 30 minutes.
func NewCatalogRefreshJob(c Refresher, schedule string, log *logger.Logger) *CatalogRefreshJob {
	if schedule == "" {
		schedule = "0 */30 * * * *"
	}
	return &CatalogRefreshJob{
		catalog:  c,
		schedule: schedule,
		logger:   log,
	}
}

func (j *CatalogRefreshJob) Name() string {
	return "catalog_refresh"
}

func (j *CatalogRefreshJob) Schedule() string {
	return j.schedule
}

// Run reloads both menus. A catalog left completely empty counts as a failure so it is retried.
func (j *CatalogRefreshJob) Run(ctx context.Context) error {
	snap := j.catalog.Refresh(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(snap.Sectors) == 0 && len(snap.Models) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}
