// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ManuGH/startline/internal/clock"
	"github.com/ManuGH/startline/internal/engine"
	"github.com/ManuGH/startline/internal/runner"
	"github.com/ManuGH/startline/internal/sequence"
	"github.com/rs/zerolog"
)

// simulationEpoch anchors the virtual clock; only offsets from it are printed.
var simulationEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func runSimulate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("startline simulate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seqID := fs.String("sequence", sequence.FiveMinute, "sequence to simulate")
	file := fs.String("file", "", "custom sequences file")
	classes := fs.String("classes", "fleet", "comma-separated classes, started one gap apart")
	gap := fs.Duration("gap", 5*time.Minute, "gap between staggered class starts")
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
	def, err := catalog.Lookup(*seqID)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := simulate(stdout, def, splitClasses(*classes), *gap); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// simulate runs def on a virtual clock, one-second ticks, and prints every
// fired signal as a timeline relative to the first class's warning signal.
func simulate(w io.Writer, def sequence.Definition, classes []string, gap time.Duration) error {
	clk := clock.NewManual(simulationEpoch)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ELAPSED\tCLASS\tCLOCK\tSIGNAL\tHORNS\tFLAGS")

	printer := runner.SinkFunc(func(_ context.Context, ev engine.Event) error {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			engine.FormatClock(int(ev.At.Sub(simulationEpoch)/time.Second)),
			ev.Class,
			engine.FormatClock(-ev.OffsetSeconds),
			ev.PhaseName,
			ev.HornCount,
			ev.Flags)
		return err
	})
	r := runner.New(clk,
		runner.WithInterval(time.Second),
		runner.WithLogger(zerolog.Nop()),
		runner.WithEngineOptions(engine.WithLogger(zerolog.Nop())),
		runner.WithSink("timeline", printer),
	)

	if _, err := r.StartStaggered(classes, def, gap); err != nil {
		return err
	}

	end := simulationEpoch.Add(time.Duration(len(classes)-1)*gap + time.Duration(def.LastOffset()+def.TotalDurationSeconds)*time.Second)
	ctx := context.Background()
	for now := clk.Now(); !now.After(end); now = clk.Now() {
		r.Tick(now)
		r.Flush(ctx)
		clk.Advance(time.Second)
	}
	return tw.Flush()
}

func splitClasses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
