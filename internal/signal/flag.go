// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package signal defines the racing signal flags shown on the committee boat.
package signal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFlag is returned when a flag name is not part of the closed flag set.
var ErrUnknownFlag = errors.New("unknown flag")

// FlagID identifies a racing signal flag.
type FlagID string

const (
	FlagClass    FlagID = "class"
	FlagP        FlagID = "P"
	FlagI        FlagID = "I"
	FlagZ        FlagID = "Z"
	FlagU        FlagID = "U"
	FlagBlack    FlagID = "black"
	FlagAP       FlagID = "AP"
	FlagN        FlagID = "N"
	FlagFirstSub FlagID = "first_sub"
	FlagX        FlagID = "X"
	FlagY        FlagID = "Y"
	FlagL        FlagID = "L"
	FlagS        FlagID = "S"
	FlagOrange   FlagID = "orange"
)

// allFlags is the enumeration order. FlagSet bits and rendering follow it.
var allFlags = [...]FlagID{
	FlagClass, FlagP, FlagI, FlagZ, FlagU, FlagBlack, FlagAP, FlagN,
	FlagFirstSub, FlagX, FlagY, FlagL, FlagS, FlagOrange,
}

// AllFlags returns every known flag in enumeration order.
func AllFlags() []FlagID {
	out := make([]FlagID, len(allFlags))
	copy(out, allFlags[:])
	return out
}

func (f FlagID) bit() (FlagSet, bool) {
	for i, known := range allFlags {
		if known == f {
			return FlagSet(1) << uint(i), true
		}
	}
	return 0, false
}

// Valid reports whether f is part of the closed flag enumeration.
func (f FlagID) Valid() bool {
	_, ok := f.bit()
	return ok
}

func (f FlagID) String() string { return string(f) }

// IsPreparatory reports whether f may serve as a preparatory signal.
func (f FlagID) IsPreparatory() bool {
	switch f {
	case FlagP, FlagI, FlagZ, FlagU, FlagBlack:
		return true
	default:
		return false
	}
}

// ParseFlag resolves a flag name. Matching is exact first, then case-insensitive.
func ParseFlag(s string) (FlagID, error) {
	s = strings.TrimSpace(s)
	for _, f := range allFlags {
		if string(f) == s {
			return f, nil
		}
	}
	for _, f := range allFlags {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlag, s)
}
