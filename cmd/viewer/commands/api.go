package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/draeangela/industry-data-visualizer/internal/api"
	"github.com/draeangela/industry-data-visualizer/internal/api/handlers"
	"github.com/draeangela/industry-data-visualizer/internal/controller"
	"github.com/draeangela/industry-data-visualizer/internal/scheduler"
	"github.com/draeangela/industry-data-visualizer/internal/scheduler/jobs"
	"github.com/draeangela/industry-data-visualizer/internal/views"
	"github.com/draeangela/industry-data-visualizer/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST and websocket API.

This command:
- opens view sessions and serves their charts
- proxies search, sector and model listings
- refreshes the catalog and closes idle sessions in the background

Endpoints:
  GET  /health
  POST /api/views?seriesIds=a,b        - open a view session
  GET  /api/views/{id}                 - committed and draft state
  POST /api/views/{id}/commands        - editor and toolbar commands
  GET  /api/views/{id}/chart           - projected chart series
  GET  /api/views/{id}/chart/option    - ECharts page (?format=json for the option)
  GET  /api/views/{id}/chart.png       - PNG export
  GET  /api/views/{id}/ws              - chart push and debounced search
  POST /api/views/{id}/save            - save the committed view
  GET  /api/saved-views                - saved views
  POST /api/saved-views/{name}/open    - open a saved view
  GET  /api/series/{id}                - series details with preview
  GET  /api/search?mode=&q=&sector=&model=
  GET  /api/sectors, /api/sectors/{name}/series, /api/models

Example:
  go run ./cmd/viewer api
  go run ./cmd/viewer api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	apiNoJobs   bool
	viewerLinks string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: $PORT)")
	apiCmd.Flags().BoolVar(&apiNoJobs, "no-jobs", false, "do not run the background jobs")
	apiCmd.Flags().StringVar(&viewerLinks, "viewer-path", "/viewer", "path prefix of viewer links in sector listings")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	checks := map[string]api.HealthCheck{"redis": a.redis.Ping}

	saved, closeSaved, err := savedViewRepository(a, checks)
	if err != nil {
		return err
	}
	defer closeSaved()

	registry := controller.NewRegistry(a.data, a.engine, a.cfg.Viewer.DefaultTitle, a.cfg.Viewer.SessionIdleTTL, log)
	defer registry.CloseAll()

	router := api.NewRouter(api.Handlers{
		Views:   handlers.NewViewHandler(registry, saved, log),
		Series:  handlers.NewSeriesHandler(a.data, a.engine, log),
		Catalog: handlers.NewCatalogHandler(a.catalog, a.searcher, viewerLinks, log),
		Stream:  handlers.NewStreamHandler(registry, a.searcher, a.cfg.Viewer.DebounceWindow, log),
		Checks:  checks,
	}, log)

	if !apiNoJobs {
		sched := scheduler.New(log)
		if err := sched.AddJob(jobs.NewCatalogRefreshJob(a.catalog, a.cfg.Viewer.CatalogSchedule, log)); err != nil {
			return fmt.Errorf("schedule catalog refresh: %w", err)
		}
		if err := sched.AddJob(jobs.NewSessionSweepJob(registry, log)); err != nil {
			return fmt.Errorf("schedule session sweep: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		// warm the menus before the first request
		if err := sched.RunJob("catalog_refresh"); err != nil {
			log.WithError(err).Warn("Initial catalog refresh not started")
		}
	}

	server := api.New(a.cfg, log, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}

// savedViewRepository uses PostgreSQL when DATABASE_URL is set and memory otherwise.
// A database connection is added to the health checks.
func savedViewRepository(a *app, checks map[string]api.HealthCheck) (views.Repository, func(), error) {
	if !a.cfg.Database.Enabled() {
		a.log.Info("DATABASE_URL not set, saved views are kept in memory")
		return views.NewMemoryRepository(), func() {}, nil
	}

	db, err := database.New(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	checks["database"] = db.Ping
	a.log.Info("Connected to database")
	return views.NewPostgresRepository(db.Pool), db.Close, nil
}
