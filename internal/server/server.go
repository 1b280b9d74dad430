// Package server exposes the Prometheus metrics endpoint for long-running
// transforms. The server is optional; it is started only when a metrics
// address is configured, and lives for the duration of the run.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Timeouts groups the HTTP server timeouts.
type Timeouts struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultTimeouts returns conservative timeouts for the metrics endpoint.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// MetricsServer serves /metrics and /health on a dedicated listener.
type MetricsServer struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewMetricsServer creates a metrics server bound to addr.
//
// Parameters:
//   - addr: The listen address (e.g. ":9090").
//   - logger: The structured logger for lifecycle events.
//
// Returns:
//   - *MetricsServer: A pointer to the initialized server.
func NewMetricsServer(addr string, logger zerolog.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	t := DefaultTimeouts()
	return &MetricsServer{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  t.ReadTimeout,
			WriteTimeout: t.WriteTimeout,
			IdleTimeout:  t.IdleTimeout,
		},
		logger: logger,
	}
}

// Start begins serving in a background goroutine. Listen errors other than
// a clean shutdown are logged, not fatal: metrics are a side channel and
// must never abort a transform.
func (s *MetricsServer) Start() {
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("metrics server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
}

// Shutdown stops the server gracefully.
//
// Parameters:
//   - ctx: The context bounding the shutdown wait.
//
// Returns:
//   - error: An error if the shutdown did not complete in time.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
