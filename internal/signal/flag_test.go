// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package signal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFlag(t *testing.T) {
	f, err := ParseFlag("first_sub")
	require.NoError(t, err)
	assert.Equal(t, FlagFirstSub, f)

	f, err = ParseFlag("ap")
	require.NoError(t, err)
	assert.Equal(t, FlagAP, f)

	_, err = ParseFlag("Q")
	require.ErrorIs(t, err, ErrUnknownFlag)
}

func TestFlagSet_ToggleTwiceIsIdentity(t *testing.T) {
	for _, f := range AllFlags() {
		s := NewFlagSet(FlagOrange, FlagClass)
		assert.Equal(t, s, s.Toggle(f).Toggle(f), "flag %s", f)
	}
}

func TestFlagSet_SliceFollowsEnumerationOrder(t *testing.T) {
	s := NewFlagSet(FlagOrange, FlagP, FlagClass)
	assert.Equal(t, []FlagID{FlagClass, FlagP, FlagOrange}, s.Slice())
	assert.Equal(t, "{class,P,orange}", s.String())
	assert.Equal(t, 3, s.Len())
}

func TestFlagSet_UnknownFlagIgnored(t *testing.T) {
	s := NewFlagSet(FlagID("Q"))
	assert.True(t, s.Empty())
	assert.False(t, FlagID("Q").Valid())
}

func TestFlagSet_SetAlgebra(t *testing.T) {
	a := NewFlagSet(FlagClass, FlagP)
	b := NewFlagSet(FlagP, FlagOrange)
	assert.Equal(t, NewFlagSet(FlagClass, FlagP, FlagOrange), a.Union(b))
	assert.Equal(t, NewFlagSet(FlagClass), a.Minus(b))
	assert.Equal(t, NewFlagSet(FlagP), a.Intersect(b))
	assert.True(t, a.Union(b).Contains(a))
	assert.False(t, a.Contains(b))
}

func TestFlagSet_JSONAndYAML(t *testing.T) {
	s := NewFlagSet(FlagAP, FlagOrange)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["AP","orange"]`, string(data))

	var back FlagSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	var fromYAML FlagSet
	require.NoError(t, yaml.Unmarshal([]byte("[N, orange]"), &fromYAML))
	assert.Equal(t, NewFlagSet(FlagN, FlagOrange), fromYAML)

	err = json.Unmarshal([]byte(`["bogus"]`), &back)
	require.ErrorIs(t, err, ErrUnknownFlag)
}

func TestIsPreparatory(t *testing.T) {
	assert.True(t, FlagBlack.IsPreparatory())
	assert.False(t, FlagX.IsPreparatory())
}
