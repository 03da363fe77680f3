// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/startline/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const clubSequences = `
sequences:
  - id: club-4
    name: Club 4-minute
    phases:
      - name: warning
        offset: -240
        set: [class]
        horn: true
      - name: preparatory
        offset: -180
        set: [P]
        horn: true
      - name: start
        offset: 0
        clear: [class, P]
        horn: true
`

func TestDecode_DerivesTotal(t *testing.T) {
	defs, err := Decode(strings.NewReader(clubSequences))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, 240, defs[0].TotalDurationSeconds)
	assert.Equal(t, signal.NewFlagSet(signal.FlagClass, signal.FlagP), defs[0].Phases[2].FlagsCleared)
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("sequences:\n  - id: x\n    colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestDecode_RejectsUnknownFlag(t *testing.T) {
	doc := strings.Replace(clubSequences, "set: [P]", "set: [Q]", 1)
	_, err := Decode(strings.NewReader(doc))
	require.ErrorIs(t, err, signal.ErrUnknownFlag)
}

func TestDecode_RejectsInvalidDefinition(t *testing.T) {
	doc := strings.Replace(clubSequences, "offset: 0", "offset: 10", 1)
	_, err := Decode(strings.NewReader(doc))
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestDecode_EmptyDocument(t *testing.T) {
	defs, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestSaveFile_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.yaml")
	def := customDef(t, "club-4")
	require.NoError(t, SaveFile(path, []Definition{def}))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, def, loaded[0])
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "sequences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sequences: []\n"), 0o644))

	c := NewCatalog()
	w := NewWatcher(c, path)
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Reload())
	assert.Empty(t, c.Custom())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte(clubSequences), 0o644))
	require.Eventually(t, func() bool {
		_, err := c.Lookup("club-4")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	// An invalid edit keeps the previous custom set.
	require.NoError(t, os.WriteFile(path, []byte("sequences: [{id: broken}]\n"), 0o644))
	time.Sleep(100 * time.Millisecond)
	_, err := c.Lookup("club-4")
	require.NoError(t, err)

	cancel()
	w.Wait()
}
