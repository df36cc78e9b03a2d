package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"storyhub/internal/startup"
)

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path   string
		status string
	}{
		{"/healthz", statusHealthy},
		{"/livez", "alive"},
		{"/readyz", "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.get(tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["status"] != tt.status {
				t.Errorf("status field = %v, want %s", body["status"], tt.status)
			}
		})
	}
}

func TestHealthReportsClosedDatabase(t *testing.T) {
	s := newTestServer(t)
	if err := s.db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if w := s.get(path); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, w.Code)
		}
	}
	if w := s.get("/livez"); w.Code != http.StatusOK {
		t.Errorf("/livez status = %d, want 200", w.Code)
	}
}

func TestGetVersion(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/version")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q", cc)
	}

	var info VersionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info.Version != startup.Version {
		t.Errorf("version = %q, want %q", info.Version, startup.Version)
	}
	if info.SchemaVersion != 1 {
		t.Errorf("schemaVersion = %d, want 1", info.SchemaVersion)
	}
}
