// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/runner"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/ManuGH/startline/internal/signal"
	"github.com/ManuGH/startline/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type classListResponse struct {
	Classes []engine.View      `json:"classes"`
	Pending []runner.Scheduled `json:"pending"`
}

type startRequest struct {
	Sequence   string               `json:"sequence,omitempty"`
	Definition *sequence.Definition `json:"definition,omitempty"`
}

type commandResponse struct {
	Events []engine.Event `json:"events,omitempty"`
	View   engine.View    `json:"view"`
}

// commandSpan opens a span for an operator command and returns a finisher
// that records the outcome.
func commandSpan(ctx context.Context, command, class string) (context.Context, func(err error)) {
	ctx, span := telemetry.Tracer().Start(ctx, "command."+command,
		trace.WithAttributes(telemetry.CommandAttributes(command, class)...))
	return ctx, func(err error) {
		if err != nil {
			_, code, _ := classify(err)
			span.SetAttributes(telemetry.ErrorAttributes(code)...)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func commandLogger(ctx context.Context, command, class string) zerolog.Logger {
	return xglog.WithComponentFromContext(ctx, "api").With().
		Str("command", command).
		Str(xglog.FieldClass, class).
		Logger()
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classListResponse{
		Classes: s.deps.Runner.Snapshots(),
		Pending: s.deps.Runner.Pending(),
	})
}

func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Runner.Lookup(chi.URLParam(r, "class"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	ctx, finish := commandSpan(r.Context(), "start", class)
	var err error
	defer func() { finish(err) }()

	var req startRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var def sequence.Definition
	if def, err = s.resolveDefinition(req.Sequence, req.Definition); err != nil {
		writeError(w, r, err)
		return
	}
	if err = s.deps.Runner.Start(class, def); err != nil {
		writeError(w, r, err)
		return
	}

	e, lerr := s.deps.Runner.Lookup(class)
	if lerr != nil {
		err = lerr
		writeError(w, r, err)
		return
	}
	view := e.Snapshot()
	trace.SpanFromContext(ctx).SetAttributes(telemetry.RunAttributes(view.RunID, def.ID, string(view.Status))...)
	l := commandLogger(xglog.ContextWithRunID(ctx, view.RunID), "start", class)
	l.Info().
		Str(xglog.FieldEvent, "command.start").
		Str(xglog.FieldSequence, def.ID).
		Msg("start sequence requested")
	writeJSON(w, http.StatusOK, commandResponse{View: view})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	ctx, finish := commandSpan(r.Context(), "stop", class)
	var err error
	defer func() { finish(err) }()

	if err = s.deps.Runner.Stop(class); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Runner.Lookup(class)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l := commandLogger(ctx, "stop", class)
	l.Info().Str(xglog.FieldEvent, "command.stop").Msg("stop requested")
	writeJSON(w, http.StatusOK, commandResponse{View: e.Snapshot()})
}

type overrideKind string

const (
	overridePostpone      overrideKind = "postpone"
	overrideAbandon       overrideKind = "abandon"
	overrideGeneralRecall overrideKind = "general_recall"
)

func (s *Server) handleOverride(kind overrideKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		class := chi.URLParam(r, "class")
		ctx, finish := commandSpan(r.Context(), string(kind), class)
		var err error
		defer func() { finish(err) }()

		e, err := s.deps.Runner.Lookup(class)
		if err != nil {
			writeError(w, r, err)
			return
		}

		now := s.deps.Runner.Now()
		var events []engine.Event
		switch kind {
		case overridePostpone:
			events, err = e.Postpone(now)
		case overrideAbandon:
			events, err = e.Abandon(now)
		case overrideGeneralRecall:
			events, err = e.GeneralRecall(now)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		view := e.Snapshot()
		l := commandLogger(xglog.ContextWithRunID(ctx, view.RunID), string(kind), class)
		l.Warn().
			Str(xglog.FieldEvent, "command."+string(kind)).
			Time("at", now).
			Msg("override requested")
		writeJSON(w, http.StatusOK, commandResponse{Events: events, View: view})
	}
}

func (s *Server) handleToggleFlag(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	_, finish := commandSpan(r.Context(), "toggle_flag", class)
	var err error
	defer func() { finish(err) }()

	e, err := s.deps.Runner.Lookup(class)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var flag signal.FlagID
	if flag, err = signal.ParseFlag(chi.URLParam(r, "flag")); err != nil {
		writeError(w, r, err)
		return
	}
	if err = e.ToggleFlag(flag); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{View: e.Snapshot()})
}

func (s *Server) handleRecallBoat(w http.ResponseWriter, r *http.Request) {
	s.boatCommand(w, r, "recall_boat", (*engine.Engine).RecallBoat)
}

func (s *Server) handleReleaseBoat(w http.ResponseWriter, r *http.Request) {
	s.boatCommand(w, r, "release_boat", (*engine.Engine).ReleaseBoat)
}

func (s *Server) boatCommand(w http.ResponseWriter, r *http.Request, command string, apply func(*engine.Engine, string) error) {
	class := chi.URLParam(r, "class")
	_, finish := commandSpan(r.Context(), command, class)
	var err error
	defer func() { finish(err) }()

	e, err := s.deps.Runner.Lookup(class)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err = apply(e, chi.URLParam(r, "boat")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{View: e.Snapshot()})
}

type staggeredRequest struct {
	Classes    []string             `json:"classes"`
	Sequence   string               `json:"sequence,omitempty"`
	Definition *sequence.Definition `json:"definition,omitempty"`
	GapSeconds *int                 `json:"gap_s,omitempty"`
}

type staggeredResponse struct {
	Schedule []runner.Scheduled `json:"schedule"`
}

func (s *Server) handleStaggered(w http.ResponseWriter, r *http.Request) {
	ctx, finish := commandSpan(r.Context(), "staggered_start", "")
	var err error
	defer func() { finish(err) }()

	var req staggeredRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var def sequence.Definition
	if def, err = s.resolveDefinition(req.Sequence, req.Definition); err != nil {
		writeError(w, r, err)
		return
	}
	gap := s.cfg.DefaultStaggerGap
	if req.GapSeconds != nil {
		gap = time.Duration(*req.GapSeconds) * time.Second
	}
	var schedule []runner.Scheduled
	if schedule, err = s.deps.Runner.StartStaggered(req.Classes, def, gap); err != nil {
		writeError(w, r, err)
		return
	}
	l := commandLogger(ctx, "staggered_start", "")
	l.Info().
		Str(xglog.FieldEvent, "command.staggered_start").
		Str(xglog.FieldSequence, def.ID).
		Strs("classes", req.Classes).
		Dur("gap", gap).
		Msg("staggered start requested")
	writeJSON(w, http.StatusOK, staggeredResponse{Schedule: schedule})
}
