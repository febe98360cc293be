// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

package ops

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := NewServer("127.0.0.1", 0, 0, nil)

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("/healthz body = %s", rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		ready      ReadinessCheck
		wantStatus int
	}{
		{"connected", func() bool { return true }, http.StatusOK},
		{"disconnected", func() bool { return false }, http.StatusServiceUnavailable},
		{"no check configured", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer("127.0.0.1", 0, 0, tt.ready)
			rec := get(t, s, "/readyz")
			if rec.Code != tt.wantStatus {
				t.Errorf("/readyz status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1", 0, 0, nil)

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("/metrics should expose default runtime metrics")
	}
}
