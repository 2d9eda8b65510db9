// Package httpserver exposes the registration ceremony over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/budda-star9/reelforge/internal/logging"
	"github.com/budda-star9/reelforge/internal/server/metrics"
	"github.com/budda-star9/reelforge/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const shutdownTimeout = 10 * time.Second

// Registrar is the part of services.RegistrationService the handlers use.
type Registrar interface {
	Begin(ctx context.Context, userID uuid.UUID, displayName string) (*services.BeginResult, error)
	Complete(ctx context.Context, ceremonyID string, response []byte) (*services.CompleteResult, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	registrar Registrar
	metrics   *metrics.Recorder
}

func NewServer(address string, l logging.Logger, r Registrar, rec *metrics.Recorder) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		registrar: r,
		metrics:   rec,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(s.observe)

	mux.Get("/health", s.handleHealth)
	mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/challenge", s.handleChallenge)
		r.Post("/register", s.handleRegister)
	})
	if s.metrics != nil {
		mux.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe records request metrics under the matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequest(r.Method, route, status, time.Since(start))
	})
}
