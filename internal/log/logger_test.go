// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	return out
}

func TestConfigure_ServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "committee", Version: "v9"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("engine")
	l.Info().Str(FieldRunID, "r1").Msg("hello")

	line := decodeLine(t, &buf)
	require.Equal(t, "committee", line["service"])
	require.Equal(t, "v9", line["version"])
	require.Equal(t, "engine", line[FieldComponent])
	require.Equal(t, "r1", line[FieldRunID])
}

func TestWithContext_AddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithRunID(ctx, "run-7")
	l := WithComponentFromContext(ctx, "api")
	l.Info().Msg("x")

	line := decodeLine(t, &buf)
	require.Equal(t, "req-1", line[FieldRequestID])
	require.Equal(t, "run-7", line[FieldRunID])
}

func TestContextHelpers_NilSafe(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	require.Empty(t, RequestIDFromContext(nil))
	//nolint:staticcheck
	require.Empty(t, RunIDFromContext(nil))
}

func TestMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/classes", nil))

	line := decodeLine(t, &buf)
	require.Equal(t, "request.handled", line[FieldEvent])
	require.EqualValues(t, http.StatusTeapot, line["status"])
	require.Equal(t, "/api/v1/classes", line["path"])
}
