// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Pinger is satisfied by the signal journal.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a dependency unhealthy when Ping fails.
type PingChecker struct {
	name string
	p    Pinger
}

// NewPingChecker wraps p under name.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, p: p}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.p.Ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// TickChecker watches the runner heartbeat. The countdown is only as good as
// its tick loop, so a stalled loop is unhealthy.
type TickChecker struct {
	lastTick func() time.Time
	interval time.Duration
	now      func() time.Time
}

// NewTickChecker creates a checker over the runner's last tick time.
func NewTickChecker(lastTick func() time.Time, interval time.Duration) *TickChecker {
	return &TickChecker{lastTick: lastTick, interval: interval, now: time.Now}
}

func (c *TickChecker) Name() string { return "runner_tick" }

func (c *TickChecker) Check(context.Context) CheckResult {
	last := c.lastTick()
	if last.IsZero() {
		return CheckResult{Status: StatusUnhealthy, Message: "runner has not ticked yet"}
	}
	age := c.now().Sub(last)
	switch {
	case age > 10*c.interval:
		return CheckResult{Status: StatusUnhealthy, Message: fmt.Sprintf("last tick %s ago", age.Round(time.Millisecond))}
	case age > 3*c.interval:
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("last tick %s ago", age.Round(time.Millisecond))}
	}
	return CheckResult{Status: StatusHealthy}
}

// FileChecker reports on an optional file such as the custom sequence file.
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a checker for file existence
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string { return c.name }

func (c *FileChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Status: StatusHealthy, Message: "absent (optional)"}
		}
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	}
	if info.IsDir() {
		return CheckResult{Status: StatusDegraded, Error: "expected file, got directory"}
	}
	return CheckResult{Status: StatusHealthy}
}
