package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Component: ComponentEngine, Output: &buf})

	logger.Info("projection computed", FieldMode, "compound")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentEngine {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentEngine)
	}
	if entry[FieldMode] != "compound" {
		t.Errorf("mode = %v, want compound", entry[FieldMode])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Component: ComponentHTTP, Output: &buf})

	var fromCtx *Logger
	h := Middleware(logger,
		func(*http.Request) string { return "req-1" },
		func(*http.Request) string { return "127.0.0.1" },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if fromCtx == nil || fromCtx.Component() != ComponentHTTP {
		t.Fatalf("FromContext() = %v, want http logger", fromCtx)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("access log is not JSON: %v", err)
	}
	if entry[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry[FieldRequestID])
	}
	if entry[FieldStatusCode] != float64(http.StatusTeapot) {
		t.Errorf("status_code = %v, want %d", entry[FieldStatusCode], http.StatusTeapot)
	}
}

func TestFromContextDefault(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != ComponentApp {
		t.Errorf("FromContext(empty).Component() = %s, want %s", got.Component(), ComponentApp)
	}
}
