// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/startline/internal/api/middleware"
	"github.com/ManuGH/startline/internal/engine"
	"github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/runner"
	"github.com/ManuGH/startline/internal/sequence"
)

// Problem codes returned in the "code" member of problem responses.
const (
	CodeAlreadyRunning    = "ALREADY_RUNNING"
	CodeNotRunning        = "NOT_RUNNING"
	CodeInvalidDefinition = "INVALID_DEFINITION"
	CodeUnknownFlag       = "UNKNOWN_FLAG"
	CodeUnknownSequence   = "UNKNOWN_SEQUENCE"
	CodeUnknownClass      = "UNKNOWN_CLASS"
	CodePresetConflict    = "PRESET_CONFLICT"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnavailable       = "UNAVAILABLE"
	CodeInternal          = "INTERNAL"
)

type errorMapping struct {
	target error
	status int
	code   string
	title  string
}

var errorMappings = []errorMapping{
	{engine.ErrAlreadyRunning, http.StatusConflict, CodeAlreadyRunning, "Sequence Already Running"},
	{engine.ErrNotRunning, http.StatusConflict, CodeNotRunning, "No Sequence Running"},
	{engine.ErrInvalidDefinition, http.StatusUnprocessableEntity, CodeInvalidDefinition, "Invalid Sequence Definition"},
	{engine.ErrUnknownFlag, http.StatusBadRequest, CodeUnknownFlag, "Unknown Flag"},
	{sequence.ErrUnknownSequence, http.StatusNotFound, CodeUnknownSequence, "Unknown Sequence"},
	{sequence.ErrPresetConflict, http.StatusConflict, CodePresetConflict, "Preset Sequence Is Read-Only"},
	{runner.ErrUnknownClass, http.StatusNotFound, CodeUnknownClass, "Unknown Class"},
	{runner.ErrInvalidClass, http.StatusBadRequest, CodeBadRequest, "Invalid Class"},
	{runner.ErrInvalidSchedule, http.StatusBadRequest, CodeBadRequest, "Invalid Schedule"},
	{engine.ErrInvalidBoat, http.StatusBadRequest, CodeBadRequest, "Invalid Boat"},
	{errBadRequest, http.StatusBadRequest, CodeBadRequest, "Bad Request"},
	{errJournalDisabled, http.StatusServiceUnavailable, CodeUnavailable, "Journal Disabled"},
}

var (
	errBadRequest      = errors.New("bad request")
	errJournalDisabled = errors.New("signal journal is disabled")
)

// classify maps a domain error onto an HTTP status and problem code.
func classify(err error) (status int, code, title string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.title
		}
	}
	return http.StatusInternalServerError, CodeInternal, "Internal Server Error"
}

// writeProblem writes an RFC 7807 problem details response.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, code, title, detail string) {
	reqID := log.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = w.Header().Get(middleware.HeaderRequestID)
	}
	res := map[string]any{
		"type":       "about:blank",
		"title":      title,
		"status":     status,
		"code":       code,
		"request_id": reqID,
		"instance":   r.URL.EscapedPath(),
	}
	if detail != "" {
		res["detail"] = detail
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().Err(err).Str("code", code).Int("status", status).Msg("failed to encode problem response")
	}
}

// writeError classifies err and writes it as a problem. Server faults are
// logged; client faults are not.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, title := classify(err)
	if status >= http.StatusInternalServerError && code == CodeInternal {
		l := log.WithComponentFromContext(r.Context(), "api")
		l.Error().
			Err(err).
			Str(log.FieldEvent, "api.internal_error").
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeProblem(w, r, status, code, title, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
