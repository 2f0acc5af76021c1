// Package server exposes the solving pipeline and case memory over
// HTTP: JSON endpoints for solving and feedback, a WebSocket stream
// for stage-by-stage progress, and the usage ledger.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/pipeline"
	"github.com/mathmentor/mentor/internal/usage"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the solving API.
type Server struct {
	cfg        Config
	orch       *pipeline.Orchestrator
	bank       *casebank.Store
	meter      *usage.Meter
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. The meter is optional; without it the stats
// endpoint reports empty totals.
func New(cfg Config, orch *pipeline.Orchestrator, bank *casebank.Store, meter *usage.Meter) *Server {
	s := &Server{
		cfg:   cfg,
		orch:  orch,
		bank:  bank,
		meter: meter,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/api/solve", s.handleSolve)
	r.Post("/api/feedback", s.handleFeedback)
	r.Post("/api/discard", s.handleDiscard)
	r.Get("/api/stats", s.handleStats)
	r.Get("/ws/solve", s.handleSolveSocket)

	casebank.RegisterRoutes(r, s.bank)

	return r
}

// Router returns the chi router, for tests and route registration.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("mentor server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
