package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/draeangela/industry-data-visualizer/pkg/config"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Server serves the viewer API until its context ends
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates a new API server with the timeouts from cfg.HTTP
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout(),
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		logger: log,
		config: cfg,
	}
}

// Run listens until ctx is cancelled, then drains in-flight requests
// for at most HTTP_SHUTDOWN_TIMEOUT. A listen failure is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	s.logger.WithFields(map[string]interface{}{
		"port":          s.config.Port,
		"env":           s.config.Env,
		"write_timeout": s.httpServer.WriteTimeout,
	}).Info("Starting API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
