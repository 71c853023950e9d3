// Package server implements the HTTP API that exposes the knowledge chat
// agent and the admin surface for the indexing pipeline.
// The server is started by the `kagent serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/54b3r/kagent-go/internal/logging"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// New constructs a Server from the provided dependencies and config.
// If cfg.Logger is nil, [logging.New] is used.
func New(chat chatHandler, profiles profileProvider, idx indexRunner, store vectorstore.Store, previewer candidateLister, cfg *Config) (*Server, error) {
	if chat == nil {
		return nil, fmt.Errorf("server: chat handler must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 150 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 20
	}

	s := &Server{
		chat:      chat,
		profiles:  profiles,
		indexer:   idx,
		store:     store,
		previewer: previewer,
		cfg:       cfg,
		log:       cfg.Logger,
		pingers:   cfg.Pingers,
		metrics:   newServerMetrics(cfg.Registry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger)
	s.stopRL = stopRL

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", rl.middleware(authMiddleware(cfg.Validator, http.HandlerFunc(s.handleChat))))
	mux.HandleFunc("GET /api/me", authMiddleware(cfg.Validator, http.HandlerFunc(s.handleMe)).ServeHTTP)
	mux.HandleFunc("POST /api/admin/knowledge-indexer/run", authMiddleware(cfg.Validator, http.HandlerFunc(s.handleIndexerRun)).ServeHTTP)
	mux.HandleFunc("POST /api/admin/knowledge-indexer/test", authMiddleware(cfg.Validator, http.HandlerFunc(s.handleIndexerTest)).ServeHTTP)
	mux.HandleFunc("GET /api/admin/knowledge-indexer/preview", authMiddleware(cfg.Validator, http.HandlerFunc(s.handleIndexerPreview)).ServeHTTP)
	mux.HandleFunc("GET /api/admin/knowledge-indexer/stats", authMiddleware(cfg.Validator, http.HandlerFunc(s.handleIndexerStats)).ServeHTTP)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if s.stopRL != nil {
			s.stopRL()
		}
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		if s.stopRL != nil {
			s.stopRL()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		logging.FromContext(r.Context()).Error("health encode error", slog.Any("error", err))
	}
}
