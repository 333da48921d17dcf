package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"feedplay/internal/player"
	"feedplay/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps well-known service errors to status codes and
// returns the status written.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) int {
	status := statusFor(err)
	writeJSONError(w, status, err.Error())
	return status
}

func statusFor(err error) int {
	var he HTTPError
	switch {
	case player.IsIndexOutOfRange(err):
		return http.StatusNotFound
	case errors.Is(err, player.ErrLoopStopped), errors.Is(err, player.ErrPlayerClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}
