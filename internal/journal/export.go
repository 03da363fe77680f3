// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package journal

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/google/renameio/v2"
)

var csvHeader = []string{"id", "run_id", "class", "kind", "phase_index", "phase", "offset_s", "clock", "horns", "status", "flags", "at"}

// ExportCSV writes every entry of runID to path. The file is replaced
// atomically; readers never observe a partial export.
func (s *Store) ExportCSV(ctx context.Context, runID, path string) (int, error) {
	entries, err := s.List(ctx, Filter{RunID: runID, Limit: -1})
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := w.Write(csvRow(e)); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("encode csv: %w", err)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write export %s: %w", path, err)
	}
	s.logger.Info().
		Str(xglog.FieldEvent, "journal.exported").
		Str(xglog.FieldRunID, runID).
		Str(xglog.FieldPath, path).
		Int("rows", len(entries)).
		Msg("journal exported")
	return len(entries), nil
}

func csvRow(e Entry) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.RunID,
		e.Class,
		string(e.Kind),
		strconv.Itoa(e.PhaseIndex),
		e.PhaseName,
		strconv.Itoa(e.OffsetSeconds),
		engine.FormatClock(e.OffsetSeconds),
		strconv.Itoa(e.HornCount),
		string(e.Status),
		encodeFlags(e.Flags),
		e.At.Format(time.RFC3339Nano),
	}
}
