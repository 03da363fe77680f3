// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/startline/internal/bus"
	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
)

// handleEvents streams fired signals as server-sent events. The stream opens
// with a "snapshot" event carrying every class view, then one "signal" event
// per fired signal. ?class= narrows both to one class.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		writeProblem(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Event Stream Unavailable", "")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, r, http.StatusInternalServerError, CodeInternal, "Streaming Unsupported", "")
		return
	}

	ctx := r.Context()
	sub, err := s.deps.Bus.Subscribe(ctx, bus.TopicSignals)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() { _ = sub.Close() }()

	class := r.URL.Query().Get("class")
	logger := xglog.WithComponentFromContext(ctx, "api")

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	views := s.deps.Runner.Snapshots()
	if class != "" {
		filtered := views[:0]
		for _, v := range views {
			if v.Class == class {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}
	if err := writeSSE(w, "snapshot", views); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			ev, isEvent := msg.(engine.Event)
			if !isEvent || (class != "" && ev.Class != class) {
				continue
			}
			if err := writeSSE(w, "signal", ev); err != nil {
				logger.Debug().Err(err).Msg("event stream closed")
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
