package ui

import (
	"encoding/json"
	"net/http"

	"saleslens/internal"
	"saleslens/internal/errors"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		internal.DefaultLogger.Error("failed to encode response: %v", err)
	}
}

// respondError writes a structured error response, mapping application error
// codes to HTTP statuses
func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidArgument, errors.CodeIngestMissing, errors.CodeIngestParse, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	internal.DefaultLogger.Error("request failed (%s): %v", code, err)
	respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}

// respondErrorStatus writes an error with an explicit status
func respondErrorStatus(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
