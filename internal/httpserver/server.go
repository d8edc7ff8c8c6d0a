package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pfrederiksen/event-discovery/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps the HTTP server and its router
type Server struct {
	http *http.Server
	log  *logger.Logger
}

// New builds the server. gatherer backs /metrics and trigger backs POST /run.
func New(addr string, trigger Triggerer, gatherer prometheus.Gatherer, log *logger.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests(log))

	r.Get("/healthz", healthz(time.Now()))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Post("/run", runPass(trigger, log))

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until Stop is called. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", logger.Fields{"addr": s.http.Addr})
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server within ctx's deadline
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down", nil)
	return s.http.Shutdown(ctx)
}
