// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ManuGH/startline/internal/engine"
	"github.com/ManuGH/startline/internal/sequence"
)

func runPresets(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("startline presets", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "custom sequences file to list alongside the presets")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	catalog := sequence.NewCatalog()
	if *file != "" {
		defs, err := sequence.LoadFile(*file)
		if err == nil {
			err = catalog.ReplaceCustom(defs)
		}
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tDURATION\tPHASES\tHORNS\tSOURCE")
	for _, def := range catalog.List() {
		source := "custom"
		if catalog.IsPreset(def.ID) {
			source = "preset"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			def.ID, def.Name, engine.FormatClock(def.TotalDurationSeconds), len(def.Phases), def.HornCount(), source)
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
