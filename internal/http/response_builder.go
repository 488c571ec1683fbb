package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fincontrol/internal/core"
	"fincontrol/internal/engine"
	"fincontrol/internal/log"
	"fincontrol/internal/middleware/trace"
)

// JSONResponseBuilder provides a fluent interface for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the response. A nil body writes no payload.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse builds the error payload carrying the request id.
func ErrorResponse(r *http.Request, statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, RequestID: trace.GetRequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

var engineInputErrors = []error{
	engine.ErrUnknownMode,
	engine.ErrUnknownMillionMode,
	engine.ErrUnknownRatePeriod,
	engine.ErrUnknownUnit,
	engine.ErrUnknownEmployment,
	engine.ErrUnknownVehicleType,
	engine.ErrInvalidPeriod,
}

// statusFor maps service errors to a status and the message shown to the
// client. Internal errors never leak their text.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, errBadRequest), core.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, err.Error()
	}
	for _, target := range engineInputErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// writeError maps err and logs it at the level its status deserves.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := statusFor(err)

	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithOperation(op)
	switch {
	case status >= 500:
		logger.ErrorContext(r.Context(), "Request failed",
			fields.WithError(err, log.ErrorTypeInternal).ToSlice()...)
	case status == http.StatusNotFound:
		logger.InfoContext(r.Context(), "Resource not found",
			fields.WithError(err, log.ErrorTypeNotFound).ToSlice()...)
	default:
		logger.WarnContext(r.Context(), "Rejected request",
			fields.WithError(err, log.ErrorTypeValidation).ToSlice()...)
	}

	ErrorResponse(r, status, message).Write(w)
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(r, http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}
