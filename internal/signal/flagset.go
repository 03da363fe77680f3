// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package signal

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlagSet is an immutable value set of flags. The zero value is empty.
type FlagSet uint16

// NewFlagSet builds a set from the given flags. Unknown flags are ignored;
// callers validate input with ParseFlag first.
func NewFlagSet(flags ...FlagID) FlagSet {
	var s FlagSet
	for _, f := range flags {
		s = s.With(f)
	}
	return s
}

// Has reports whether f is in the set.
func (s FlagSet) Has(f FlagID) bool {
	b, ok := f.bit()
	return ok && s&b != 0
}

// With returns s plus f.
func (s FlagSet) With(f FlagID) FlagSet {
	b, ok := f.bit()
	if !ok {
		return s
	}
	return s | b
}

// Without returns s minus f.
func (s FlagSet) Without(f FlagID) FlagSet {
	b, ok := f.bit()
	if !ok {
		return s
	}
	return s &^ b
}

// Toggle flips membership of f.
func (s FlagSet) Toggle(f FlagID) FlagSet {
	if s.Has(f) {
		return s.Without(f)
	}
	return s.With(f)
}

// Union returns the flags in either set.
func (s FlagSet) Union(o FlagSet) FlagSet { return s | o }

// Minus returns the flags of s not in o.
func (s FlagSet) Minus(o FlagSet) FlagSet { return s &^ o }

// Intersect returns the flags in both sets.
func (s FlagSet) Intersect(o FlagSet) FlagSet { return s & o }

// Contains reports whether every flag of o is in s.
func (s FlagSet) Contains(o FlagSet) bool { return s&o == o }

// Empty reports whether the set has no flags.
func (s FlagSet) Empty() bool { return s == 0 }

// Len returns the number of flags.
func (s FlagSet) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Slice returns the members in enumeration order.
func (s FlagSet) Slice() []FlagID {
	out := make([]FlagID, 0, s.Len())
	for i, f := range allFlags {
		if s&(FlagSet(1)<<uint(i)) != 0 {
			out = append(out, f)
		}
	}
	return out
}

func (s FlagSet) String() string {
	parts := make([]string, 0, s.Len())
	for _, f := range s.Slice() {
		parts = append(parts, string(f))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func parseFlagList(names []string) (FlagSet, error) {
	var s FlagSet
	for _, n := range names {
		f, err := ParseFlag(n)
		if err != nil {
			return 0, err
		}
		s = s.With(f)
	}
	return s, nil
}

// MarshalJSON renders the set as an array of flag names.
func (s FlagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON accepts an array of flag names.
func (s *FlagSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("flag set: %w", err)
	}
	parsed, err := parseFlagList(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML renders the set as a sequence of flag names.
func (s FlagSet) MarshalYAML() (interface{}, error) {
	names := make([]string, 0, s.Len())
	for _, f := range s.Slice() {
		names = append(names, string(f))
	}
	return names, nil
}

// UnmarshalYAML accepts a sequence of flag names.
func (s *FlagSet) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return fmt.Errorf("flag set: %w", err)
	}
	parsed, err := parseFlagList(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
