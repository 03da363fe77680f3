// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("STARTLINE_TEST_STRING", "from-env")
	t.Setenv("STARTLINE_TEST_EMPTY", "")
	assert.Equal(t, "from-env", ParseString("STARTLINE_TEST_STRING", "default"))
	assert.Equal(t, "default", ParseString("STARTLINE_TEST_EMPTY", "default"))
	assert.Equal(t, "default", ParseString("STARTLINE_TEST_UNSET", "default"))
}

func TestParseTyped(t *testing.T) {
	t.Setenv("STARTLINE_TEST_INT", "42")
	t.Setenv("STARTLINE_TEST_BAD_INT", "forty-two")
	t.Setenv("STARTLINE_TEST_DUR", "1m30s")
	t.Setenv("STARTLINE_TEST_BAD_DUR", "90")
	t.Setenv("STARTLINE_TEST_FLOAT", "0.25")

	assert.Equal(t, 42, ParseInt("STARTLINE_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("STARTLINE_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, ParseDuration("STARTLINE_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, ParseDuration("STARTLINE_TEST_BAD_DUR", time.Second))
	assert.InDelta(t, 0.25, ParseFloat("STARTLINE_TEST_FLOAT", 1), 1e-9)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"false", true, false},
		{"No", true, false},
		{"maybe", true, true},
		{"", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("STARTLINE_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, ParseBool("STARTLINE_TEST_BOOL", tt.def))
		})
	}
}

func TestParseList(t *testing.T) {
	t.Setenv("STARTLINE_TEST_LIST", " laser,,420 , optimist ")
	assert.Equal(t, []string{"laser", "420", "optimist"}, ParseList("STARTLINE_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseList("STARTLINE_TEST_LIST_UNSET", []string{"x"}))
}
