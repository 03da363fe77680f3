// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command startline runs the race start signal board and its tooling.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/startline/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runServe(nil, stderr)
	}
	switch args[0] {
	case "serve":
		return runServe(args[1:], stderr)
	case "presets":
		return runPresets(args[1:], stdout, stderr)
	case "simulate":
		return runSimulate(args[1:], stdout, stderr)
	case "export":
		return runExport(args[1:], stdout, stderr)
	case "config":
		return runConfigCLI(args[1:], stdout, stderr)
	case "healthcheck":
		return runHealthcheck(args[1:], stdout, stderr)
	case "version", "-version", "--version":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		if len(args[0]) > 0 && args[0][0] == '-' {
			return runServe(args, stderr)
		}
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  startline [serve] [--config config.yaml]")
	_, _ = fmt.Fprintln(w, "  startline presets [--file sequences.yaml]")
	_, _ = fmt.Fprintln(w, "  startline simulate [--sequence 5min] [--classes a,b] [--gap 5m]")
	_, _ = fmt.Fprintln(w, "  startline export --run RUN_ID --out signals.csv [--db journal.sqlite]")
	_, _ = fmt.Fprintln(w, "  startline config validate|dump [--file config.yaml]")
	_, _ = fmt.Fprintln(w, "  startline healthcheck [--mode ready|live] [--addr localhost:8080]")
	_, _ = fmt.Fprintln(w, "  startline version")
}
