// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

// Status is the lifecycle state of the engine's current run.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusRunning       Status = "running"
	StatusPostponed     Status = "postponed"
	StatusAbandoned     Status = "abandoned"
	StatusGeneralRecall Status = "general_recall"
	StatusFinished      Status = "finished"
)

// IsOverride reports whether s is one of the operator override states.
// Override states are terminal for the run: only Stop leaves them.
func (s Status) IsOverride() bool {
	switch s {
	case StatusPostponed, StatusAbandoned, StatusGeneralRecall:
		return true
	default:
		return false
	}
}

// Active reports whether a run exists (anything but Idle).
func (s Status) Active() bool {
	return s != StatusIdle && s != ""
}

type command string

const (
	cmdStart         command = "start"
	cmdStartReached  command = "start_reached"
	cmdPostpone      command = "postpone"
	cmdAbandon       command = "abandon"
	cmdGeneralRecall command = "general_recall"
	cmdStop          command = "stop"
)

type transition struct {
	From    Status
	Command command
	To      Status
}

var transitionsTable = []transition{
	{From: StatusIdle, Command: cmdStart, To: StatusRunning},
	{From: StatusRunning, Command: cmdStartReached, To: StatusFinished},

	// Overrides interrupt a countdown or the racing window after the start.
	{From: StatusRunning, Command: cmdPostpone, To: StatusPostponed},
	{From: StatusFinished, Command: cmdPostpone, To: StatusPostponed},
	{From: StatusRunning, Command: cmdAbandon, To: StatusAbandoned},
	{From: StatusFinished, Command: cmdAbandon, To: StatusAbandoned},
	{From: StatusRunning, Command: cmdGeneralRecall, To: StatusGeneralRecall},
	{From: StatusFinished, Command: cmdGeneralRecall, To: StatusGeneralRecall},

	// Stop is valid from every state.
	{From: StatusIdle, Command: cmdStop, To: StatusIdle},
	{From: StatusRunning, Command: cmdStop, To: StatusIdle},
	{From: StatusFinished, Command: cmdStop, To: StatusIdle},
	{From: StatusPostponed, Command: cmdStop, To: StatusIdle},
	{From: StatusAbandoned, Command: cmdStop, To: StatusIdle},
	{From: StatusGeneralRecall, Command: cmdStop, To: StatusIdle},
}

func transitionFor(from Status, cmd command) (Status, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Command == cmd {
			return tr.To, true
		}
	}
	return from, false
}
