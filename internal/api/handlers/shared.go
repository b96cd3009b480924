// Package handlers contains the HTTP layer adapters. Handlers parse and
// validate requests, delegate to the service layer, and translate domain
// errors into HTTP status codes.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// parseJSON decodes the request body into T. Unknown fields are rejected so
// typos in client payloads surface as 400s instead of silently-zero fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var payload T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return payload, fmt.Errorf("failed to decode request body: %w", err)
	}
	return payload, nil
}
