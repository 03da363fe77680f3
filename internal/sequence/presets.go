// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"fmt"

	"github.com/ManuGH/startline/internal/signal"
)

// Preset identifiers.
const (
	FiveMinute       = "5min"
	FiveMinuteI      = "5min-i"
	FiveMinuteZ      = "5min-z"
	FiveMinuteU      = "5min-u"
	FiveMinuteBlack  = "5min-black"
	ThreeMinute      = "3min"
	ThreeMinuteI     = "3min-i"
	ThreeMinuteZ     = "3min-z"
	ThreeMinuteU     = "3min-u"
	ThreeMinuteBlack = "3min-black"
)

// Phase names used by the presets.
const (
	PhaseWarning     = "warning"
	PhasePreparatory = "preparatory"
	PhaseOneMinute   = "one-minute"
	PhaseStart       = "start"
)

// Standard builds the warning / preparatory / one-minute / start table with
// the given warning lead time and preparatory flag. The class flag goes up at
// the warning, the preparatory flag one minute later, and both come down at
// the start. The one-minute signal is sound only so that flags accumulate
// monotonically until the start.
func Standard(id, name string, warningSeconds int, prep signal.FlagID) (Definition, error) {
	if !prep.IsPreparatory() {
		return Definition{}, fmt.Errorf("%w: %s is not a preparatory flag", ErrInvalidDefinition, prep)
	}
	return New(id, name,
		Phase{Name: PhaseWarning, OffsetSeconds: -warningSeconds, FlagsSet: signal.NewFlagSet(signal.FlagClass), FiresHorn: true},
		Phase{Name: PhasePreparatory, OffsetSeconds: -warningSeconds + 60, FlagsSet: signal.NewFlagSet(prep), FiresHorn: true},
		Phase{Name: PhaseOneMinute, OffsetSeconds: -60, FiresHorn: true},
		Phase{Name: PhaseStart, OffsetSeconds: 0, FlagsCleared: signal.NewFlagSet(signal.FlagClass, prep), FiresHorn: true},
	)
}

func mustStandard(id, name string, warningSeconds int, prep signal.FlagID) Definition {
	def, err := Standard(id, name, warningSeconds, prep)
	if err != nil {
		panic(err)
	}
	return def
}

// Presets returns the built-in definitions in display order.
func Presets() []Definition {
	return []Definition{
		mustStandard(FiveMinute, "5-minute start (P)", 300, signal.FlagP),
		mustStandard(FiveMinuteI, "5-minute start (I, round-an-end)", 300, signal.FlagI),
		mustStandard(FiveMinuteZ, "5-minute start (Z, 20% penalty)", 300, signal.FlagZ),
		mustStandard(FiveMinuteU, "5-minute start (U, UFD)", 300, signal.FlagU),
		mustStandard(FiveMinuteBlack, "5-minute start (black flag)", 300, signal.FlagBlack),
		mustStandard(ThreeMinute, "3-minute start", 180, signal.FlagP),
		mustStandard(ThreeMinuteI, "3-minute start (I, round-an-end)", 180, signal.FlagI),
		mustStandard(ThreeMinuteZ, "3-minute start (Z, 20% penalty)", 180, signal.FlagZ),
		mustStandard(ThreeMinuteU, "3-minute start (U, UFD)", 180, signal.FlagU),
		mustStandard(ThreeMinuteBlack, "3-minute start (black flag)", 180, signal.FlagBlack),
	}
}
