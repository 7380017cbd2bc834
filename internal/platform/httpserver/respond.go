package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kunalsingh7053/VyaparX/modules/shared/types"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// StatusOf maps an error's kind to an HTTP status. Business conflicts are
// reported as 400; only lost optimistic-concurrency races are 409.
func StatusOf(err error) int {
	if errors.Is(err, types.ErrConcurrentUpdate) {
		return http.StatusConflict
	}
	switch types.KindOf(err) {
	case types.KindValidation, types.KindConflict:
		return http.StatusBadRequest
	case types.KindUnauthorized:
		return http.StatusUnauthorized
	case types.KindForbidden:
		return http.StatusForbidden
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as {"error", "message"}. Internal and upstream
// failures are logged; their details never reach the response.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	WriteJSON(w, status, errorResponse{Error: types.Code(err), Message: types.PublicMessage(err)})
}

// WriteBadRequest reports a malformed request body.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: message})
}
