package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fincontrol/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"name":"ok"}`, nil},
		{"empty", ``, errBadRequest},
		{"unknown field", `{"name":"ok","extra":1}`, errBadRequest},
		{"two objects", `{"name":"a"}{"name":"b"}`, errBadRequest},
		{"wrong type", `{"name":5}`, errBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := decodeJSON(httptest.NewRecorder(), req, &p)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("decodeJSON() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && p.Name != "ok" {
				t.Errorf("decodeJSON() Name = %q, want ok", p.Name)
			}
		})
	}
}

func TestDecodeJSON_InvalidAmountKeepsValidationError(t *testing.T) {
	var body struct {
		Amount core.Amount `json:"amount"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"abc"}`))
	err := decodeJSON(httptest.NewRecorder(), req, &body)
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("decodeJSON() error = %v, want %v", err, core.ErrInvalidAmount)
	}
	if errors.Is(err, errBadRequest) {
		t.Errorf("decodeJSON() wrapped a validation error in errBadRequest")
	}
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/transactions/abc", nil)
	req.SetPathValue("id", " abc\x00 ")
	id, err := pathID(req)
	if err != nil || id != "abc" {
		t.Errorf("pathID() = %q, %v, want abc", id, err)
	}

	if _, err := pathID(httptest.NewRequest(http.MethodDelete, "/", nil)); !errors.Is(err, errBadRequest) {
		t.Errorf("pathID() error = %v, want %v", err, errBadRequest)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Mercado  ", "Mercado"},
		{"a\x00b\x07c", "abc"},
		{"linha1\nlinha2\ttab", "linha1\nlinha2\ttab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.input); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
