// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"fmt"
	"net/http"
	"slices"

	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/go-chi/chi/v5"
)

type sequenceResponse struct {
	sequence.Definition
	Preset bool `json:"preset"`
}

type sequenceListResponse struct {
	Default   string             `json:"default"`
	Sequences []sequenceResponse `json:"sequences"`
}

func (s *Server) handleListSequences(w http.ResponseWriter, r *http.Request) {
	defs := s.deps.Catalog.List()
	resp := sequenceListResponse{
		Default:   s.cfg.DefaultSequence,
		Sequences: make([]sequenceResponse, 0, len(defs)),
	}
	for _, def := range defs {
		resp.Sequences = append(resp.Sequences, sequenceResponse{Definition: def, Preset: s.deps.Catalog.IsPreset(def.ID)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSequence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, err := s.deps.Catalog.Lookup(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse{Definition: def, Preset: s.deps.Catalog.IsPreset(id)})
}

// resolveDefinition picks an inline definition over a catalog ID, falling
// back to the configured default sequence.
func (s *Server) resolveDefinition(id string, inline *sequence.Definition) (sequence.Definition, error) {
	if inline != nil {
		if id != "" {
			return sequence.Definition{}, fmt.Errorf("%w: give either sequence or definition, not both", errBadRequest)
		}
		def := inline.Clone()
		if def.TotalDurationSeconds == 0 && len(def.Phases) > 0 {
			def.TotalDurationSeconds = -def.Phases[0].OffsetSeconds
		}
		if err := sequence.Validate(def); err != nil {
			return sequence.Definition{}, err
		}
		return def, nil
	}
	if id == "" {
		id = s.cfg.DefaultSequence
	}
	return s.deps.Catalog.Lookup(id)
}

// handlePutSequence registers or replaces a custom definition under {id}.
func (s *Server) handlePutSequence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var def sequence.Definition
	if err := decodeJSON(w, r, &def); err != nil {
		writeError(w, r, err)
		return
	}
	if def.ID == "" {
		def.ID = id
	}
	if def.ID != id {
		writeError(w, r, fmt.Errorf("%w: body id %q does not match path id %q", errBadRequest, def.ID, id))
		return
	}
	if def.TotalDurationSeconds == 0 && len(def.Phases) > 0 {
		def.TotalDurationSeconds = -def.Phases[0].OffsetSeconds
	}

	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	prev := s.deps.Catalog.Custom()
	if err := s.deps.Catalog.Register(def); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.persistSequences(r); err != nil {
		_ = s.deps.Catalog.ReplaceCustom(prev)
		writeError(w, r, err)
		return
	}
	stored, err := s.deps.Catalog.Lookup(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse{Definition: stored})
}

// handleDeleteSequence removes a custom definition. Presets cannot be removed.
func (s *Server) handleDeleteSequence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if s.deps.Catalog.IsPreset(id) {
		writeError(w, r, fmt.Errorf("%w: %q", sequence.ErrPresetConflict, id))
		return
	}
	prev := s.deps.Catalog.Custom()
	kept := slices.DeleteFunc(slices.Clone(prev), func(d sequence.Definition) bool { return d.ID == id })
	if len(kept) == len(prev) {
		writeError(w, r, fmt.Errorf("%w: %q", sequence.ErrUnknownSequence, id))
		return
	}
	if err := s.deps.Catalog.ReplaceCustom(kept); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.persistSequences(r); err != nil {
		_ = s.deps.Catalog.ReplaceCustom(prev)
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// persistSequences writes the custom set to the sequences file. Caller holds seqMu.
func (s *Server) persistSequences(r *http.Request) error {
	if s.cfg.SequencesFile == "" {
		return nil
	}
	custom := s.deps.Catalog.Custom()
	if err := sequence.SaveFile(s.cfg.SequencesFile, custom); err != nil {
		return err
	}
	l := xglog.WithComponentFromContext(r.Context(), "api")
	l.Info().
		Str(xglog.FieldEvent, "sequences.saved").
		Str(xglog.FieldPath, s.cfg.SequencesFile).
		Int("count", len(custom)).
		Msg("custom sequences saved")
	return nil
}
