package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gemmad/internal/manager"
	"gemmad/pkg/types"
)

// msgModelUnavailable is returned with 503 while no model is loaded.
const msgModelUnavailable = "Model is not available. Please check server logs."

// HTTPError allows services to provide an HTTP status code for an error.
// Manager errors without a dedicated case below (such as a runtime that
// overran its token budget) carry their status this way.
type HTTPError interface {
	error
	StatusCode() int
}

// errorStatus maps service errors to a status code and client message.
func errorStatus(err error) (int, string) {
	switch {
	case manager.IsModelUnavailable(err):
		return http.StatusServiceUnavailable, msgModelUnavailable
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable, err.Error()
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests, err.Error()
	case manager.IsInvalidRequest(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "generation timed out"
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), he.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Detail: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
