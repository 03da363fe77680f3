// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldRunID     = "run_id"
	FieldClass     = "class"
	FieldBoatID    = "boat_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Sequence fields
	FieldSequence   = "sequence"
	FieldPhase      = "phase"
	FieldPhaseIndex = "phase_index"
	FieldOffset     = "offset_s"
	FieldRemaining  = "remaining_s"
	FieldHorns      = "horns"
	FieldFlag       = "flag"
	FieldFlags      = "flags"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path fields
	FieldPath = "path"
)
