package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/draeangela/industry-data-visualizer/internal/api/handlers"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
	"github.com/draeangela/industry-data-visualizer/pkg/redis"
)

// HealthCheck probes one dependency; redis.ErrDisabled marks it as not configured
type HealthCheck func(ctx context.Context) error

// Handlers groups the endpoint handlers the router mounts
type Handlers struct {
	Views   *handlers.ViewHandler
	Series  *handlers.SeriesHandler
	Catalog *handlers.CatalogHandler
	Stream  *handlers.StreamHandler

	// Checks are reported by /health, keyed by component name
	Checks map[string]HealthCheck
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.Checks)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// View sessions
	api.HandleFunc("/views", h.Views.Create).Methods("POST")
	api.HandleFunc("/views/{id}", h.Views.Get).Methods("GET")
	api.HandleFunc("/views/{id}", h.Views.Close).Methods("DELETE")
	api.HandleFunc("/views/{id}/commands", h.Views.Command).Methods("POST")
	api.HandleFunc("/views/{id}/chart", h.Views.Chart).Methods("GET")
	api.HandleFunc("/views/{id}/chart/option", h.Views.ChartOption).Methods("GET")
	api.HandleFunc("/views/{id}/chart.png", h.Views.ChartPNG).Methods("GET")
	api.HandleFunc("/views/{id}/ws", h.Stream.ServeWS).Methods("GET")
	api.HandleFunc("/views/{id}/save", h.Views.Save).Methods("POST")

	// Saved views
	api.HandleFunc("/saved-views", h.Views.ListSaved).Methods("GET")
	api.HandleFunc("/saved-views/{name}/open", h.Views.OpenSaved).Methods("POST")
	api.HandleFunc("/saved-views/{name}", h.Views.DeleteSaved).Methods("DELETE")

	// Series, catalog and search
	api.HandleFunc("/series/{id}", h.Series.GetSeries).Methods("GET")
	api.HandleFunc("/search", h.Catalog.Search).Methods("GET")
	api.HandleFunc("/sectors", h.Catalog.GetSectors).Methods("GET")
	api.HandleFunc("/sectors/{name}/series", h.Catalog.GetSectorSeries).Methods("GET")
	api.HandleFunc("/models", h.Catalog.GetModels).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler reports each dependency; any failing check turns the status to 503
func healthCheckHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		components := make(map[string]string, len(names))
		for _, name := range names {
			err := checks[name](ctx)
			switch {
			case err == nil:
				components[name] = "ok"
			case errors.Is(err, redis.ErrDisabled):
				components[name] = "disabled"
			default:
				components[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     status,
			"service":    "industry-data-visualizer",
			"components": components,
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
