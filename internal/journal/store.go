// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package journal keeps the committee's signal log: every fired phase and
// override, in order, on a local SQLite file.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/startline/internal/engine"
	xglog "github.com/ManuGH/startline/internal/log"
	"github.com/ManuGH/startline/internal/signal"
	"github.com/rs/zerolog"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS signals (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT    NOT NULL,
		class       TEXT    NOT NULL,
		kind        TEXT    NOT NULL,
		phase_index INTEGER NOT NULL,
		phase       TEXT    NOT NULL,
		offset_s    INTEGER NOT NULL,
		horns       INTEGER NOT NULL,
		status      TEXT    NOT NULL,
		flags       TEXT    NOT NULL,
		at_ms       INTEGER NOT NULL,
		recorded_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_class ON signals(class, id)`,
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("journal closed")

// Entry is one journal row.
type Entry struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	engine.Event
}

// Filter narrows List results. Zero values match everything. Limit 0 means
// 500 and a negative Limit is unbounded.
type Filter struct {
	RunID string
	Class string
	Limit int
}

// Store is the SQLite-backed journal.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger zerolog.Logger
}

// Open opens (creating if needed) the journal at path and migrates the schema.
func Open(ctx context.Context, path string, cfg Config) (*Store, error) {
	db, err := openDB(path, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: time.Now, logger: xglog.WithComponent("journal")}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info().Str(xglog.FieldEvent, "journal.opened").Str(xglog.FieldPath, path).Msg("signal journal ready")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable and structurally sound.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("journal ping: %w", err)
	}
	problems, err := verifyIntegrity(ctx, s.db)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("journal integrity: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Record appends one event.
func (s *Store) Record(ctx context.Context, ev engine.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO signals (run_id, class, kind, phase_index, phase, offset_s, horns, status, flags, at_ms, recorded_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Class, string(ev.Kind), ev.PhaseIndex, ev.PhaseName, ev.OffsetSeconds,
		ev.HornCount, string(ev.Status), encodeFlags(ev.Flags), ev.At.UnixMilli(), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record signal: %w", err)
	}
	return nil
}

// Signal lets the store act as a runner sink.
func (s *Store) Signal(ctx context.Context, ev engine.Event) error {
	return s.Record(ctx, ev)
}

// List returns matching entries in recording order.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit == 0 {
		limit = 500
	}

	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Class != "" {
		where = append(where, "class = ?")
		args = append(args, f.Class)
	}
	query := `SELECT id, run_id, class, kind, phase_index, phase, offset_s, horns, status, flags, at_ms, recorded_ms FROM signals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                Entry
			kind, status, fl string
			atMs, recordedMs int64
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Class, &kind, &e.PhaseIndex, &e.PhaseName,
			&e.OffsetSeconds, &e.HornCount, &status, &fl, &atMs, &recordedMs); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		e.Kind = engine.EventKind(kind)
		e.Status = engine.Status(status)
		e.Flags, err = decodeFlags(fl)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", e.ID, err)
		}
		e.At = time.UnixMilli(atMs).UTC()
		e.RecordedAt = time.UnixMilli(recordedMs).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func encodeFlags(fs signal.FlagSet) string {
	names := make([]string, 0, fs.Len())
	for _, f := range fs.Slice() {
		names = append(names, string(f))
	}
	return strings.Join(names, ",")
}

func decodeFlags(s string) (signal.FlagSet, error) {
	var fs signal.FlagSet
	if s == "" {
		return fs, nil
	}
	for _, name := range strings.Split(s, ",") {
		f, err := signal.ParseFlag(name)
		if err != nil {
			return 0, err
		}
		fs = fs.With(f)
	}
	return fs, nil
}
