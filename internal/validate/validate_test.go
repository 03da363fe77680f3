// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_AccumulatesErrors(t *testing.T) {
	v := New()
	v.Range("ticks", 0, 1, 10)
	v.NotEmpty("name", "  ")
	v.OneOf("exporter", "zipkin", []string{"grpc", "http"})
	require.False(t, v.IsValid())
	require.Len(t, v.Errors(), 3)

	err := v.Err()
	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors(), 3)
	assert.Contains(t, err.Error(), "validation failed for ticks")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidator_ValidIsNil(t *testing.T) {
	v := New()
	v.Range("ticks", 5, 1, 10)
	v.Positive("rpm", 60)
	v.Fraction("sampling", 0.25)
	v.Unique("classes", []string{"a", "b"})
	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{":8080", false},
		{"127.0.0.1:9090", false},
		{"localhost:0", false},
		{"8080", true},
		{":99999", true},
		{":http", true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			v := New()
			v.ListenAddr("listen", tt.addr)
			assert.Equal(t, tt.wantErr, !v.IsValid())
		})
	}
}

func TestValidator_DurationRange(t *testing.T) {
	v := New()
	v.DurationRange("tick", 10*time.Millisecond, 50*time.Millisecond, time.Second)
	v.DurationRange("tick", 100*time.Millisecond, 50*time.Millisecond, time.Second)
	assert.Len(t, v.Errors(), 1)
}

func TestValidator_Unique(t *testing.T) {
	v := New()
	v.Unique("classes", []string{"laser", "420", "laser"})
	require.Len(t, v.Errors(), 1)
	assert.Equal(t, "laser", v.Errors()[0].Value)
}

func TestValidator_Directory(t *testing.T) {
	root := t.TempDir()

	v := New()
	created := filepath.Join(root, "data")
	v.Directory("data", created, false)
	require.True(t, v.IsValid())
	info, err := os.Stat(created)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	v = New()
	v.Directory("data", filepath.Join(root, "missing"), true)
	assert.False(t, v.IsValid())

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	v = New()
	v.Directory("data", file, false)
	assert.False(t, v.IsValid())

	v = New()
	v.Directory("data", "../escape", false)
	assert.False(t, v.IsValid())
}

func TestLogLevel_IsValid(t *testing.T) {
	assert.True(t, LogLevel("debug").IsValid())
	assert.False(t, LogLevel("verbose").IsValid())
}
