// Package http serves the dashboard page, its JSON API, and the operational
// endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/dashboard"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// FigureService answers control changes once the dataset is loaded.
// It implements sharedobs.ReadinessChecker.
type FigureService interface {
	CheckReadiness(ctx context.Context) error
	Figures(year int, sel dashboard.Selection) (dashboard.Figures, error)
	Dataset() (*domain.Dataset, error)
}

// Options configures the routes.
type Options struct {
	Addr        string
	FirstYear   int
	LastYear    int
	DefaultYear int
	RateLimit   float64
	RateBurst   int
	MapboxToken string
}

// Server exposes the dashboard, its API, and health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        FigureService
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(opts Options, svc FigureService, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}

	limit := newRateLimiter(opts.RateLimit, opts.RateBurst, metrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /api/figures", limit(http.HandlerFunc(s.handleFigures)))
	mux.Handle("GET /api/states", limit(http.HandlerFunc(s.handleStates)))
	mux.Handle("GET /api/boundaries", limit(http.HandlerFunc(s.handleBoundaries)))
	mux.Handle("GET /api/aggregates", limit(http.HandlerFunc(s.handleAggregates)))
	mux.Handle("GET /api/export.xlsx", limit(http.HandlerFunc(s.handleExport)))
	mux.Handle("GET /charts/{file}", limit(http.HandlerFunc(s.handleChartPNG)))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = requestID(recovery(logger)(accessLog(logger)(mux)))
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
