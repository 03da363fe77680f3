// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package sequence holds start-sequence templates: the phase tables that say
// which flags go up or down, and when the horn sounds, relative to the start.
package sequence

import (
	"github.com/ManuGH/startline/internal/signal"
)

// Phase is one milestone of a start sequence. OffsetSeconds is relative to the
// start (T0): negative before the start, zero at the start, positive after.
type Phase struct {
	Name          string         `json:"name" yaml:"name"`
	OffsetSeconds int            `json:"offset_s" yaml:"offset"`
	FlagsSet      signal.FlagSet `json:"flags_set" yaml:"set,omitempty"`
	FlagsCleared  signal.FlagSet `json:"flags_cleared" yaml:"clear,omitempty"`
	FiresHorn     bool           `json:"fires_horn" yaml:"horn"`
}

// Apply returns flags with the phase delta applied. Clearing happens before
// setting, so a phase can never leave a flag it raises lowered.
func (p Phase) Apply(flags signal.FlagSet) signal.FlagSet {
	return flags.Minus(p.FlagsCleared).Union(p.FlagsSet)
}

// Definition is an immutable start-sequence template.
type Definition struct {
	ID                   string  `json:"id" yaml:"id"`
	Name                 string  `json:"name" yaml:"name"`
	TotalDurationSeconds int     `json:"total_s" yaml:"total,omitempty"`
	Phases               []Phase `json:"phases" yaml:"phases"`
}

// New builds a definition, deriving the total duration from the first phase,
// and validates it.
func New(id, name string, phases ...Phase) (Definition, error) {
	def := Definition{ID: id, Name: name, Phases: append([]Phase(nil), phases...)}
	if len(phases) > 0 {
		def.TotalDurationSeconds = -phases[0].OffsetSeconds
	}
	if err := Validate(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Clone returns a deep copy so callers can never alias the phase slice.
func (d Definition) Clone() Definition {
	d.Phases = append([]Phase(nil), d.Phases...)
	return d
}

// StartIndex returns the index of the zero-offset phase, or -1.
func (d Definition) StartIndex() int {
	for i, p := range d.Phases {
		if p.OffsetSeconds == 0 {
			return i
		}
	}
	return -1
}

// LastOffset is the offset of the final phase; positive values mean the
// sequence keeps signalling after the start.
func (d Definition) LastOffset() int {
	if len(d.Phases) == 0 {
		return 0
	}
	return d.Phases[len(d.Phases)-1].OffsetSeconds
}

// HornCount counts phases with a sound signal.
func (d Definition) HornCount() int {
	n := 0
	for _, p := range d.Phases {
		if p.FiresHorn {
			n++
		}
	}
	return n
}
