// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/ManuGH/startline/internal/config"
	"github.com/ManuGH/startline/internal/journal"
	"github.com/ManuGH/startline/internal/version"
)

func runExport(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("startline export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	runID := fs.String("run", "", "run ID to export (required)")
	out := fs.String("out", "", "CSV output path (required)")
	dbPath := fs.String("db", "", "journal database; defaults to the configured journal path")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *runID == "" || *out == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --run and --out are required")
		return 2
	}

	path := *dbPath
	if path == "" {
		cfg, err := config.NewLoader(*configPath, version.Version).Load()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
			return 1
		}
		path = cfg.Journal.Path
	}

	ctx := context.Background()
	store, err := journal.Open(ctx, path, journal.DefaultConfig())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	n, err := store.ExportCSV(ctx, *runID, *out)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "exported %d signals of run %s to %s\n", n, *runID, *out)
	return 0
}
