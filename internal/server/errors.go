package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/54b3r/kagent-go/internal/kerr"
	"github.com/54b3r/kagent-go/internal/logging"
)

// errorResponse is the JSON body of every non-2xx response: a stable status
// code, a short machine-readable error code, and a human message. Never
// carries a stack trace or an upstream token.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{StatusCode: status, Message: message, Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForKind maps a kerr.Kind to the HTTP status code spec §7 assigns it.
func statusForKind(k kerr.Kind) int {
	switch k {
	case kerr.KindInvalidInput:
		return http.StatusBadRequest
	case kerr.KindUnauthenticated:
		return http.StatusUnauthorized
	case kerr.KindForbidden:
		return http.StatusForbidden
	case kerr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeHandlerError logs err and writes the status/body statusForKind(err)
// prescribes.
func writeHandlerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := kerr.KindOf(err)
	status := statusForKind(kind)
	logging.FromContext(r.Context()).Error(op,
		slog.String("kind", kind.String()),
		slog.Any("error", err),
	)
	writeError(w, status, kind.String(), "request failed")
}
