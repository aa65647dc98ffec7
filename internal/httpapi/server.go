// ABOUTME: HTTP API for the canvas: blocks, connections and semantic analysis
// ABOUTME: Go pattern routing over net/http with recovery, logging and per-IP rate limiting
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/harper/semantic-canvas/internal/canvas"
	"github.com/harper/semantic-canvas/internal/metrics"
)

// Server serves the canvas REST API
type Server struct {
	svc            *canvas.Service
	logger         *slog.Logger
	metrics        metrics.Recorder
	metricsHandler http.Handler
	limiter        *ipLimiter
	now            func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics records request metrics into r and serves h on /metrics
func WithMetrics(r metrics.Recorder, h http.Handler) Option {
	return func(s *Server) {
		s.metrics = metrics.OrNoop(r)
		s.metricsHandler = h
	}
}

// WithRateLimit sets the per-IP token bucket. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = newIPLimiter(rps, burst)
	}
}

// New creates an API server over svc
func New(svc *canvas.Service, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		logger:  slog.Default(),
		metrics: metrics.Noop(),
		limiter: newIPLimiter(5, 10),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/blocks", s.listBlocks)
	mux.HandleFunc("GET /api/blocks/{id}", s.getBlock)
	mux.HandleFunc("POST /api/blocks", s.createBlock)
	mux.HandleFunc("PUT /api/blocks/{id}", s.updateBlock)
	mux.HandleFunc("DELETE /api/blocks/{id}", s.deleteBlock)

	mux.HandleFunc("GET /api/connections", s.listConnections)
	mux.HandleFunc("GET /api/connections/{id}", s.getConnection)
	mux.HandleFunc("POST /api/connections", s.createConnection)
	mux.HandleFunc("DELETE /api/connections/{id}", s.deleteConnection)

	mux.HandleFunc("POST /api/analysis/canvas", s.analyzeCanvas)
	mux.HandleFunc("GET /api/analysis/similar/{id}", s.findSimilar)
	mux.HandleFunc("POST /api/analysis/search", s.search)
	mux.HandleFunc("GET /api/analysis/auto-suggest/{id}", s.autoSuggest)

	mux.HandleFunc("POST /api/admin/cache/clear", s.clearCache)
	mux.HandleFunc("GET /healthz", s.health)
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
	mux.HandleFunc("/", s.notFound)

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.rateLimit(h)
	}
	h = s.logRequests(h)
	return s.recovery(h)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
