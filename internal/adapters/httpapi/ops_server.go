// Package httpapi serves the operational endpoints: health and metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *postgres.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsServer exposes /healthz and /metrics.
type OpsServer struct {
	addr     string
	db       Pinger
	gatherer prometheus.Gatherer
	log      zerolog.Logger
}

// NewOpsServer creates the ops server for addr.
func NewOpsServer(addr string, db Pinger, gatherer prometheus.Gatherer, baseLogger *zerolog.Logger) *OpsServer {
	return &OpsServer{
		addr:     addr,
		db:       db,
		gatherer: gatherer,
		log:      baseLogger.With().Str("component", "ops_server").Logger(),
	}
}

// Routes builds the chi router.
func (s *OpsServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *OpsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Health check failed")
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *OpsServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("Ops server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("Ops server shutdown error")
		return err
	}
	s.log.Info().Msg("Ops server stopped")
	return nil
}
