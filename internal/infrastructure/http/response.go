package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FallbackResponse is the success-shaped body served when a handler fails.
// Decoy endpoints never expose an error page.
type FallbackResponse struct {
	Status string `json:"status"`
}

// WriteJSON writes payload as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status code has already been written, so only log.
		if log != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}

// WriteFallback writes the generic success body with status 200.
func WriteFallback(w http.ResponseWriter, log *slog.Logger) {
	WriteJSON(w, http.StatusOK, FallbackResponse{Status: "success"}, log)
}
