package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Station-Manager/trafficlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, out *bytes.Buffer) *trafficlog.Service {
	t.Helper()
	cfg := trafficlog.DefaultConfig()
	cfg.Level = "trace"
	cfg.ConsoleLogging = false
	cfg.Output = out
	svc := trafficlog.NewLogger(&cfg)
	svc.Theme = trafficlog.PlainTheme()
	require.NoError(t, svc.Initialize())
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestRouter(t *testing.T) {
	var out bytes.Buffer
	h := newRouter(newTestService(t, &out))

	t.Run("users", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"name":"Ada"`)
	})

	t.Run("echo", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, `{"a":1}`, rec.Body.String())
		assert.Equal(t, "7", rec.Header().Get("Content-Length"))
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, "ok", rec.Body.String())
	})

	assert.Contains(t, out.String(), "Incoming request from 192.0.2.1")
	assert.Contains(t, out.String(), "Dispatched response to 192.0.2.1")
}
