package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/ulpack/internal/apperror"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData wraps a successful payload in the {"data": ...} envelope.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

type errorBody struct {
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
	Details any           `json:"details"`
}

// writeError answers with the error envelope. Unclassified errors are
// logged and reported as a generic http_error.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	appErr := apperror.As(err)
	status := apperror.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]any{"error": errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}})
}

// decodeJSON reads a JSON body into v. Malformed input is a validation
// error rather than a 400 so clients see one error shape for bad payloads.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return apperror.Validation("Malformed JSON body", apperror.FieldErrors{"body": err.Error()})
	}
	return nil
}

// APINotFound answers unknown /api/ paths with the error envelope.
func APINotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{"error": errorBody{
		Code:    apperror.CodeNotFound,
		Message: "Resource not found",
	}})
}

// APITooManyRequests is the rate limit response for JSON routes.
func APITooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": errorBody{
		Code:    apperror.CodeHTTP,
		Message: "Too many requests",
	}})
}
