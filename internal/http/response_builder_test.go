package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/middleware/trace"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/goals/1").
		Body(map[string]string{"id": "1"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("Location") != "/api/goals/1" {
		t.Errorf("Location = %q", w.Header().Get("Location"))
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":"1"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d with %d bytes, want 204 and no body", w.Code, w.Body.Len())
	}
	if w.Header().Get("Content-Type") != "" {
		t.Errorf("Content-Type = %q, want none", w.Header().Get("Content-Type"))
	}
}

func TestErrorResponse_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), trace.RequestIDKey, "req_abc"))
	w := httptest.NewRecorder()

	ErrorResponse(req, http.StatusBadRequest, "invalid period").Write(w)

	body := decodeBody[errorBody](t, w)
	if body.Error != "invalid period" || body.RequestID != "req_abc" {
		t.Errorf("body = %+v", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", fmt.Errorf("save: %w", core.ErrEmptyDescription), http.StatusBadRequest, ""},
		{"not found", fmt.Errorf("get goal x: %w", core.ErrNotFound), http.StatusNotFound, ""},
		{"bad request", fmt.Errorf("%w: empty body", errBadRequest), http.StatusBadRequest, ""},
		{"unknown mode", engine.ErrUnknownMode, http.StatusBadRequest, ""},
		{"invalid period", fmt.Errorf("%w: 2024-13", engine.ErrInvalidPeriod), http.StatusBadRequest, ""},
		{"unknown vehicle", engine.ErrUnknownVehicleType, http.StatusBadRequest, ""},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "request body too large"},
		{"internal", errors.New("dynamodb: throttled"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusFor(tt.err)
			if status != tt.wantStatus {
				t.Errorf("statusFor() status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("statusFor() message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
