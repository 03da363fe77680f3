// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ManuGH/startline/internal/journal"
)

const maxJournalLimit = 5000

type journalResponse struct {
	Entries []journal.Entry `json:"entries"`
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeError(w, r, errJournalDisabled)
		return
	}
	q := r.URL.Query()
	f := journal.Filter{
		RunID: q.Get("run_id"),
		Class: q.Get("class"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxJournalLimit {
			writeError(w, r, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, maxJournalLimit))
			return
		}
		f.Limit = n
	}

	entries, err := s.deps.Journal.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, journalResponse{Entries: entries})
}
