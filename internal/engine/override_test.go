// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package engine

import (
	"testing"

	"github.com/ManuGH/startline/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrides_ReplaceBoardAndFreezeRun(t *testing.T) {
	tests := []struct {
		name   string
		do     func(e *Engine) ([]Event, error)
		status Status
		flag   signal.FlagID
		horns  int
		phase  string
	}{
		{"postpone", func(e *Engine) ([]Event, error) { return e.Postpone(at(200)) }, StatusPostponed, signal.FlagAP, 1, NamePostponement},
		{"abandon", func(e *Engine) ([]Event, error) { return e.Abandon(at(200)) }, StatusAbandoned, signal.FlagN, 1, NameAbandonment},
		{"general recall", func(e *Engine) ([]Event, error) { return e.GeneralRecall(at(200)) }, StatusGeneralRecall, signal.FlagFirstSub, 2, NameGeneralRecall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			require.NoError(t, e.Start(fiveMinute(t), at(0)))
			e.Tick(at(100))

			evs, err := tt.do(e)
			require.NoError(t, err)
			require.Len(t, evs, 1)
			ev := evs[0]
			assert.Equal(t, KindOverride, ev.Kind)
			assert.Equal(t, -1, ev.PhaseIndex)
			assert.Equal(t, tt.phase, ev.PhaseName)
			assert.Equal(t, tt.horns, ev.HornCount)
			assert.Equal(t, tt.status, ev.Status)
			assert.Equal(t, at(200), ev.At)
			assert.Equal(t, -100, ev.OffsetSeconds)
			assert.Equal(t, 100, e.Snapshot().RemainingSeconds)

			want := flags(tt.flag, signal.FlagOrange)
			frozen := e.Snapshot()
			assert.Equal(t, want, frozen.ActiveFlags)
			assert.Equal(t, tt.status, frozen.Status)

			for _, s := range []int{240, 300, 301, 900} {
				assert.Nil(t, e.Tick(at(s)))
				assert.Equal(t, frozen, e.Snapshot())
			}
		})
	}
}

func TestOverride_RejectedWhenIdle(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Postpone(at(0))
	require.ErrorIs(t, err, ErrNotRunning)
	_, err = e.Abandon(at(0))
	require.ErrorIs(t, err, ErrNotRunning)
	_, err = e.GeneralRecall(at(0))
	require.ErrorIs(t, err, ErrNotRunning)
	assert.Equal(t, StatusIdle, e.Status())
}

func TestOverride_NotReversibleOrStackable(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	_, err := e.Postpone(at(10))
	require.NoError(t, err)

	_, err = e.Abandon(at(20))
	require.ErrorIs(t, err, ErrNotRunning)
	assert.Equal(t, flags(signal.FlagAP, signal.FlagOrange), e.Snapshot().ActiveFlags)

	require.ErrorIs(t, e.Start(fiveMinute(t), at(30)), ErrAlreadyRunning)
}

func TestGeneralRecallScenario(t *testing.T) {
	e := newTestEngine(t)
	var horns int
	cancel := e.Subscribe(func(evs []Event) {
		for _, ev := range evs {
			horns += ev.HornCount
		}
	})
	defer cancel()

	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	e.Tick(at(300))
	require.Equal(t, StatusFinished, e.Status())
	require.Equal(t, 4, horns)

	evs, err := e.GeneralRecall(at(302))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, 2, evs[0].HornCount)
	assert.Equal(t, 6, horns, "general recall adds two sound signals")
	assert.Equal(t, flags(signal.FlagFirstSub, signal.FlagOrange), e.Snapshot().ActiveFlags)

	require.ErrorIs(t, e.Start(fiveMinute(t), at(310)), ErrAlreadyRunning)
	e.Stop()
	assert.Equal(t, StatusIdle, e.Status())
	require.NoError(t, e.Start(fiveMinute(t), at(320)))
	assert.Equal(t, StatusRunning, e.Status())
}

func TestToggleFlag_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	e.Tick(at(70))
	before := e.Snapshot()

	require.NoError(t, e.ToggleFlag(signal.FlagX))
	mid := e.Snapshot()
	assert.True(t, mid.ActiveFlags.Has(signal.FlagX))
	assert.Equal(t, before.Status, mid.Status)
	assert.Equal(t, before.CurrentPhaseIndex, mid.CurrentPhaseIndex)

	require.NoError(t, e.ToggleFlag(signal.FlagX))
	assert.Equal(t, before, e.Snapshot())
}

func TestToggleFlag_AllowedInOverrideStates(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	_, err := e.Abandon(at(5))
	require.NoError(t, err)
	require.NoError(t, e.ToggleFlag(signal.FlagL))
	assert.True(t, e.Snapshot().ActiveFlags.Has(signal.FlagL))
	assert.Equal(t, StatusAbandoned, e.Status())
}

func TestToggleFlag_Errors(t *testing.T) {
	e := newTestEngine(t)
	require.ErrorIs(t, e.ToggleFlag(signal.FlagX), ErrNotRunning)

	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	before := e.Snapshot()
	require.ErrorIs(t, e.ToggleFlag(signal.FlagID("Q")), ErrUnknownFlag)
	assert.Equal(t, before, e.Snapshot())
}

func TestIndividualRecall(t *testing.T) {
	e := newTestEngine(t)
	require.ErrorIs(t, e.RecallBoat("GBR 12"), ErrNotRunning)

	require.NoError(t, e.Start(fiveMinute(t), at(0)))
	e.Tick(at(300))

	require.NoError(t, e.RecallBoat("GBR 12"))
	require.NoError(t, e.RecallBoat("NED 7"))
	require.ErrorIs(t, e.RecallBoat("  "), ErrInvalidBoat)

	v := e.Snapshot()
	assert.Equal(t, []string{"GBR 12", "NED 7"}, v.RecalledBoats)
	assert.True(t, v.ActiveFlags.Has(signal.FlagX))

	require.NoError(t, e.ReleaseBoat("GBR 12"))
	assert.True(t, e.Snapshot().ActiveFlags.Has(signal.FlagX))
	require.NoError(t, e.ReleaseBoat("unknown"))
	require.NoError(t, e.ReleaseBoat("NED 7"))

	v = e.Snapshot()
	assert.Empty(t, v.RecalledBoats)
	assert.False(t, v.ActiveFlags.Has(signal.FlagX))
	assert.Equal(t, StatusFinished, v.Status)
}
