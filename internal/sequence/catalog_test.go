// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"testing"

	"github.com/ManuGH/startline/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customDef(t *testing.T, id string) Definition {
	t.Helper()
	def, err := New(id, "custom "+id,
		Phase{Name: "warning", OffsetSeconds: -240, FlagsSet: signal.NewFlagSet(signal.FlagClass), FiresHorn: true},
		Phase{Name: "preparatory", OffsetSeconds: -180, FlagsSet: signal.NewFlagSet(signal.FlagU), FiresHorn: true},
		Phase{Name: "start", OffsetSeconds: 0, FlagsCleared: signal.NewFlagSet(signal.FlagClass, signal.FlagU), FiresHorn: true},
	)
	require.NoError(t, err)
	return def
}

func TestCatalog_LookupPreset(t *testing.T) {
	c := NewCatalog()
	def, err := c.Lookup(FiveMinute)
	require.NoError(t, err)
	assert.Equal(t, 300, def.TotalDurationSeconds)
	assert.True(t, c.IsPreset(ThreeMinute))

	_, err = c.Lookup("nope")
	require.ErrorIs(t, err, ErrUnknownSequence)
}

func TestPresets_PreparatoryVariants(t *testing.T) {
	tests := []struct {
		id    string
		total int
		prep  signal.FlagID
	}{
		{FiveMinute, 300, signal.FlagP},
		{FiveMinuteI, 300, signal.FlagI},
		{FiveMinuteZ, 300, signal.FlagZ},
		{FiveMinuteU, 300, signal.FlagU},
		{FiveMinuteBlack, 300, signal.FlagBlack},
		{ThreeMinute, 180, signal.FlagP},
		{ThreeMinuteI, 180, signal.FlagI},
		{ThreeMinuteZ, 180, signal.FlagZ},
		{ThreeMinuteU, 180, signal.FlagU},
		{ThreeMinuteBlack, 180, signal.FlagBlack},
	}
	c := NewCatalog()
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			require.True(t, c.IsPreset(tt.id))
			def, err := c.Lookup(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.total, def.TotalDurationSeconds)
			require.Len(t, def.Phases, 4)
			assert.Equal(t, -tt.total+60, def.Phases[1].OffsetSeconds)
			assert.Equal(t, signal.NewFlagSet(tt.prep), def.Phases[1].FlagsSet)
			assert.Equal(t, signal.NewFlagSet(signal.FlagClass, tt.prep), def.Phases[3].FlagsCleared)
		})
	}
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	c := NewCatalog()
	def, err := c.Lookup(FiveMinute)
	require.NoError(t, err)
	def.Phases[0].OffsetSeconds = -1

	again, err := c.Lookup(FiveMinute)
	require.NoError(t, err)
	assert.Equal(t, -300, again.Phases[0].OffsetSeconds)
}

func TestCatalog_RegisterCustom(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(customDef(t, "club-4")))

	list := c.List()
	assert.Equal(t, len(Presets())+1, len(list))
	assert.Equal(t, "club-4", list[len(list)-1].ID)

	err := c.Register(customDef(t, FiveMinute))
	require.ErrorIs(t, err, ErrPresetConflict)

	err = c.Register(Definition{ID: "broken"})
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestCatalog_ReplaceCustomIsAtomic(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.ReplaceCustom([]Definition{customDef(t, "a"), customDef(t, "b")}))
	require.Len(t, c.Custom(), 2)

	err := c.ReplaceCustom([]Definition{customDef(t, "c"), {ID: "broken"}})
	require.ErrorIs(t, err, ErrInvalidDefinition)

	ids := []string{}
	for _, def := range c.Custom() {
		ids = append(ids, def.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)

	err = c.ReplaceCustom([]Definition{customDef(t, ThreeMinute)})
	require.ErrorIs(t, err, ErrPresetConflict)
	assert.Len(t, c.Custom(), 2)
}
