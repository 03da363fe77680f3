// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes the signal boards over HTTP: class status, operator
// commands, staggered starts, the journal and a live event stream.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/startline/internal/api/middleware"
	"github.com/ManuGH/startline/internal/bus"
	"github.com/ManuGH/startline/internal/journal"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/runner"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// JournalReader is the read side of the signal journal.
type JournalReader interface {
	List(ctx context.Context, f journal.Filter) ([]journal.Entry, error)
}

// HealthHandlers serves the probe endpoints.
type HealthHandlers interface {
	ServeHealth(w http.ResponseWriter, r *http.Request)
	ServeReady(w http.ResponseWriter, r *http.Request)
}

// Config tunes the HTTP surface.
type Config struct {
	DefaultSequence   string
	DefaultStaggerGap time.Duration
	RateLimitEnabled  bool
	RateLimitRPM      int
	TracingService    string
	HeartbeatInterval time.Duration
	// SequencesFile receives the custom sequences after every edit; empty
	// keeps edits in memory only.
	SequencesFile string
}

// Deps are the collaborators the handlers act on. Journal and Health may be nil.
type Deps struct {
	Runner  *runner.Runner
	Catalog *sequence.Catalog
	Bus     bus.Bus
	Journal JournalReader
	Health  HealthHandlers
}

// Server owns the router.
type Server struct {
	cfg    Config
	deps   Deps
	logger zerolog.Logger
	router chi.Router

	// seqMu orders catalog edits with their file writes.
	seqMu sync.Mutex
}

// New builds the router.
func New(cfg Config, deps Deps) *Server {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 15 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: xglog.WithComponent("api"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        s.cfg.TracingService,
		EnableLogging:         true,
	})

	if s.deps.Health != nil {
		r.Get("/healthz", s.deps.Health.ServeHealth)
		r.Get("/readyz", s.deps.Health.ServeReady)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sequences", s.handleListSequences)
		r.Get("/sequences/{id}", s.handleGetSequence)
		r.Get("/classes", s.handleListClasses)
		r.Get("/classes/{class}", s.handleGetClass)
		r.Get("/events", s.handleEvents)
		r.Get("/journal", s.handleJournal)

		r.Group(func(r chi.Router) {
			if s.cfg.RateLimitEnabled && s.cfg.RateLimitRPM > 0 {
				r.Use(middleware.CommandRateLimit(s.cfg.RateLimitRPM))
			}
			r.Put("/sequences/{id}", s.handlePutSequence)
			r.Delete("/sequences/{id}", s.handleDeleteSequence)
			r.Post("/staggered", s.handleStaggered)
			r.Post("/classes/{class}/start", s.handleStart)
			r.Post("/classes/{class}/stop", s.handleStop)
			r.Post("/classes/{class}/postpone", s.handleOverride(overridePostpone))
			r.Post("/classes/{class}/abandon", s.handleOverride(overrideAbandon))
			r.Post("/classes/{class}/general-recall", s.handleOverride(overrideGeneralRecall))
			r.Post("/classes/{class}/flags/{flag}/toggle", s.handleToggleFlag)
			r.Post("/classes/{class}/recalls/{boat}", s.handleRecallBoat)
			r.Delete("/classes/{class}/recalls/{boat}", s.handleReleaseBoat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "NOT_FOUND", "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed", "")
	})
	return r
}
