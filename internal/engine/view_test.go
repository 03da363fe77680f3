// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "5:00", FormatClock(300))
	assert.Equal(t, "0:59", FormatClock(59))
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "-0:02", FormatClock(-2))
	assert.Equal(t, "12:05", FormatClock(725))
}

func TestFormatRemaining_Floors(t *testing.T) {
	assert.Equal(t, "0:59", FormatRemaining(59*time.Second+999*time.Millisecond))
	assert.Equal(t, "1:00", FormatRemaining(time.Minute))
	assert.Equal(t, "-0:01", FormatRemaining(-300*time.Millisecond))
}

func TestWholeSeconds(t *testing.T) {
	assert.Equal(t, 1, wholeSeconds(1999*time.Millisecond))
	assert.Equal(t, -1, wholeSeconds(-time.Millisecond))
	assert.Equal(t, -2, wholeSeconds(-2*time.Second))
}

func TestView_JSONShape(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	e.Tick(at(60))

	data, err := json.Marshal(e.Snapshot())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "running", m["status"])
	assert.EqualValues(t, 240, m["remaining_s"])
	assert.Equal(t, []any{"class", "P", "orange"}, m["flags"])
	assert.Equal(t, "preparatory", m["phase"])
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusGeneralRecall.IsOverride())
	assert.False(t, StatusFinished.IsOverride())
	assert.False(t, StatusIdle.Active())
	assert.True(t, StatusAbandoned.Active())

	_, ok := transitionFor(StatusPostponed, cmdAbandon)
	assert.False(t, ok)
	to, ok := transitionFor(StatusFinished, cmdGeneralRecall)
	assert.True(t, ok)
	assert.Equal(t, StatusGeneralRecall, to)
}
