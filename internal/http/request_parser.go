// This file implements request decoding shared by the JSON handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fincontrol/internal/core"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads exactly one JSON object from the body into dst.
// Unknown fields are rejected so typos do not silently take defaults.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		case core.IsValidation(err):
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// pathID returns the {id} wildcard of the matched route.
func pathID(r *http.Request) (string, error) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		return "", fmt.Errorf("%w: missing id", errBadRequest)
	}
	return id, nil
}

// queryParam returns a sanitized query value.
func queryParam(r *http.Request, key string) string {
	return sanitizeInput(r.URL.Query().Get(key))
}
