// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys.
const (
	ClassKey     = "startline.class"
	RunIDKey     = "startline.run_id"
	SequenceKey  = "startline.sequence"
	CommandKey   = "startline.command"
	StatusKey    = "startline.status"
	FlagKey      = "startline.flag"
	BoatKey      = "startline.boat"
	ErrorTypeKey = "error.type"
)

// CommandAttributes describes an operator command against one class.
func CommandAttributes(command, class string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CommandKey, command),
		attribute.String(ClassKey, class),
	}
}

// RunAttributes describes the run a command acted on. Empty values are skipped.
func RunAttributes(runID, sequence, status string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if runID != "" {
		attrs = append(attrs, attribute.String(RunIDKey, runID))
	}
	if sequence != "" {
		attrs = append(attrs, attribute.String(SequenceKey, sequence))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(StatusKey, status))
	}
	return attrs
}

// ErrorAttributes classifies a failed command by its problem code.
func ErrorAttributes(code string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ErrorTypeKey, code)}
}
