// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/startline/internal/engine"
	"github.com/ManuGH/startline/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal.sqlite")
	s, err := Open(context.Background(), dbPath, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dbPath
}

func sampleEvents(runID, class string) []engine.Event {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []engine.Event{
		{Class: class, RunID: runID, Kind: engine.KindPhase, PhaseIndex: 0, PhaseName: "warning", OffsetSeconds: -300, HornCount: 1, Status: engine.StatusRunning, Flags: signal.NewFlagSet(signal.FlagOrange, signal.FlagClass), At: at},
		{Class: class, RunID: runID, Kind: engine.KindPhase, PhaseIndex: 1, PhaseName: "preparatory", OffsetSeconds: -240, HornCount: 1, Status: engine.StatusRunning, Flags: signal.NewFlagSet(signal.FlagOrange, signal.FlagClass, signal.FlagP), At: at.Add(time.Minute)},
		{Class: class, RunID: runID, Kind: engine.KindOverride, PhaseIndex: -1, PhaseName: engine.NameGeneralRecall, OffsetSeconds: 5, HornCount: 2, Status: engine.StatusGeneralRecall, Flags: signal.NewFlagSet(signal.FlagOrange, signal.FlagFirstSub), At: at.Add(305 * time.Second)},
	}
}

func TestStore_RecordAndList(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for _, ev := range sampleEvents("run-a", "laser") {
		require.NoError(t, s.Record(ctx, ev))
	}
	require.NoError(t, s.Signal(ctx, sampleEvents("run-b", "420")[0]))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	runA, err := s.List(ctx, Filter{RunID: "run-a"})
	require.NoError(t, err)
	require.Len(t, runA, 3)
	for i, e := range runA {
		assert.Equal(t, sampleEvents("run-a", "laser")[i], e.Event, "entry %d", i)
		assert.False(t, e.RecordedAt.IsZero())
	}
	assert.Less(t, runA[0].ID, runA[1].ID)

	byClass, err := s.List(ctx, Filter{Class: "420"})
	require.NoError(t, err)
	require.Len(t, byClass, 1)
	assert.Equal(t, "run-b", byClass[0].RunID)

	limited, err := s.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_ReopenKeepsEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.sqlite")
	ctx := context.Background()

	s, err := Open(ctx, dbPath, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, sampleEvents("run-a", "laser")[0]))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dbPath, DefaultConfig())
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.List(ctx, Filter{RunID: "run-a"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.NoError(t, s.Ping(ctx))
}

func TestStore_ExportCSV(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	for _, ev := range sampleEvents("run-a", "laser") {
		require.NoError(t, s.Record(ctx, ev))
	}

	out := filepath.Join(t.TempDir(), "run-a.csv")
	n, err := s.ExportCSV(ctx, "run-a", out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "warning", rows[1][5])
	assert.Equal(t, "-5:00", rows[1][7])
	assert.Equal(t, "class,orange", rows[1][10])
	assert.Equal(t, "2", rows[3][8])
	assert.Equal(t, "0:05", rows[3][7])
}

func TestDecodeFlags_RejectsUnknown(t *testing.T) {
	_, err := decodeFlags("orange,bogus")
	require.ErrorIs(t, err, signal.ErrUnknownFlag)

	fs, err := decodeFlags("")
	require.NoError(t, err)
	assert.True(t, fs.Empty())
}
