package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success logs at info", http.StatusOK, "info"},
		{"client error logs at info", http.StatusUnprocessableEntity, "info"},
		{"server error logs at error", http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := NewLoggingMiddleware(zerolog.New(&buf))

			handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("expected one json log line, got %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Fatalf("expected level %s, got %v", tt.wantLevel, entry["level"])
			}
			if int(entry["status"].(float64)) != tt.status {
				t.Fatalf("expected status %d, got %v", tt.status, entry["status"])
			}
			if entry["path"] != "/api/v1/dashboard" || int(entry["bytes"].(float64)) != 4 {
				t.Fatalf("unexpected entry %v", entry)
			}
		})
	}
}

func TestLoggingMiddlewareDefaultsStatusToOK(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if int(entry["status"].(float64)) != http.StatusOK {
		t.Fatalf("expected status 200, got %v", entry["status"])
	}
}
