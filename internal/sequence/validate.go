// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDefinition classifies every definition validation failure.
// Use errors.Is(err, ErrInvalidDefinition) instead of string matching.
var ErrInvalidDefinition = errors.New("invalid sequence definition")

// ValidationError lists every problem found in one definition.
type ValidationError struct {
	ID       string
	Problems []string
}

func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("sequence %s: %s", id, strings.Join(e.Problems, "; "))
}

// Is makes a ValidationError match ErrInvalidDefinition.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// Validate checks the structural invariants of a definition: at least one
// phase, strictly ascending unique offsets, a zero-offset start phase, a
// first phase that is not after the start, a total that matches the first
// offset, unique phase names, and no flag both raised and lowered by a phase.
func Validate(def Definition) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(def.ID) == "" {
		add("id is required")
	}
	if len(def.Phases) == 0 {
		add("at least one phase is required")
		return &ValidationError{ID: def.ID, Problems: problems}
	}

	names := make(map[string]struct{}, len(def.Phases))
	hasStart := false
	for i, p := range def.Phases {
		if i > 0 && p.OffsetSeconds <= def.Phases[i-1].OffsetSeconds {
			add("phase %d (%s) offset %d is not after %d", i, p.Name, p.OffsetSeconds, def.Phases[i-1].OffsetSeconds)
		}
		if p.OffsetSeconds == 0 {
			hasStart = true
		}
		if strings.TrimSpace(p.Name) == "" {
			add("phase %d has no name", i)
		} else if _, dup := names[p.Name]; dup {
			add("phase name %q is used twice", p.Name)
		} else {
			names[p.Name] = struct{}{}
		}
		if both := p.FlagsSet.Intersect(p.FlagsCleared); !both.Empty() {
			add("phase %s both raises and lowers %s", p.Name, both)
		}
	}
	if !hasStart {
		add("no phase at offset 0")
	}
	if first := def.Phases[0].OffsetSeconds; first > 0 {
		add("first phase offset %d is after the start", first)
	} else if def.TotalDurationSeconds != -first {
		add("total duration %d does not match first phase offset %d", def.TotalDurationSeconds, first)
	}

	if len(problems) > 0 {
		return &ValidationError{ID: def.ID, Problems: problems}
	}
	return nil
}
