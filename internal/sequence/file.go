// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a custom sequences file.
type File struct {
	Sequences []Definition `yaml:"sequences"`
}

// Decode parses a sequences document strictly: unknown keys are rejected.
// A missing total is derived from the first phase.
func Decode(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode sequences: %w", err)
	}

	out := make([]Definition, 0, len(f.Sequences))
	for _, def := range f.Sequences {
		if def.TotalDurationSeconds == 0 && len(def.Phases) > 0 {
			def.TotalDurationSeconds = -def.Phases[0].OffsetSeconds
		}
		if err := Validate(def); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// LoadFile reads and validates a sequences file.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequences file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// SaveFile writes definitions atomically (fsync + rename).
func SaveFile(path string, defs []Definition) error {
	data, err := yaml.Marshal(File{Sequences: defs})
	if err != nil {
		return fmt.Errorf("encode sequences: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sequences file: %w", err)
	}
	return nil
}
