package handler

import (
	"encoding/json"
	"go.uber.org/zap"
	"net/http"
)

// ErrorMessage is the body of every error response.
type ErrorMessage struct {
	Error string `json:"error"`
}

func HttpError(w http.ResponseWriter, message string, code int, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorMessage{Error: message}); err != nil {
		logger.Error("Error encountered when encoding error response", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encountered when encoding response", zap.Error(err))
		HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
	}
}
