// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/startline/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "startline dev")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "launch")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Unknown command: launch")
}

func TestPresets_ListsCatalog(t *testing.T) {
	code, out, _ := runCLI(t, "presets")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, sequence.FiveMinute)
	assert.Contains(t, out, sequence.ThreeMinute)
	assert.Contains(t, out, "preset")
}

func TestPresets_RejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sequences: [\n"), 0o600))

	code, _, errOut := runCLI(t, "presets", "--file", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestSimulate_FiveMinuteTimeline(t *testing.T) {
	def, err := sequence.NewCatalog().Lookup(sequence.FiveMinute)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, simulate(&buf, def, []string{"laser"}, 0))

	var signals []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		fields := strings.Fields(line)
		require.GreaterOrEqual(t, len(fields), 5, line)
		signals = append(signals, fields[0]+" "+fields[3])
	}
	assert.Equal(t, []string{
		"0:00 warning",
		"1:00 preparatory",
		"4:00 one-minute",
		"5:00 start",
	}, signals)
}

func TestSimulate_StaggeredClasses(t *testing.T) {
	code, out, errOut := runCLI(t, "simulate", "--sequence", "5min", "--classes", "a, b", "--gap", (5 * time.Minute).String())
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, 8, strings.Count(out, "\n")-1)
	assert.Contains(t, out, "10:00")
}

func TestSimulate_UnknownSequence(t *testing.T) {
	code, _, errOut := runCLI(t, "simulate", "--sequence", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown sequence")
}

func TestExport_RequiresFlags(t *testing.T) {
	code, _, errOut := runCLI(t, "export", "--run", "r1")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "--run and --out are required")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("dataDir: "+dir+"\nengine:\n  defaultSequence: 3min\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("dataDir: "+dir+"\nbogus: true\n"), 0o600))

	code, out, _ := runCLI(t, "config", "validate", "-f", good)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "is valid")

	code, _, errOut := runCLI(t, "config", "validate", "-f", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Configuration error")
}

func TestConfigDump_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STARTLINE_DATA_DIR", dir)

	code, out, errOut := runCLI(t, "config", "dump")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "tickInterval: 250ms")

	dumped := filepath.Join(dir, "dumped.yaml")
	require.NoError(t, os.WriteFile(dumped, []byte(out), 0o600))
	code, _, errOut = runCLI(t, "config", "validate", "-f", dumped)
	assert.Equal(t, 0, code, errOut)
}
