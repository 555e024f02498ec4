package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/levelup-app/reward-engine/internal/domain"
	"github.com/levelup-app/reward-engine/internal/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	// Encode to the buffer first; once headers are sent an encode failure
	// can only be logged.
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped
// user-facing error response.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	logger.FromContext(r.Context()).Error("Service call failed", "operation", opName, "error", err)
	status, userMsg := mapServiceErrorToUserMessage(err)
	respondError(w, status, userMsg)
}

// User-facing error messages for service errors
const (
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgServerErrorError    = "Server error occurred. Please try again."
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	ErrMsgMissingUserError   = "User id is required"
	ErrMsgNegativeXPError    = "XP must be non-negative"
	ErrMsgBoxNotFoundError   = "Loot box not found"
	ErrMsgUnknownTierError   = "Unknown loot box tier"
	ErrMsgInvalidStatusError = "Loot box is not in the right state for that"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// status codes and messages.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrMissingUser):
		return http.StatusBadRequest, ErrMsgMissingUserError
	case errors.Is(err, domain.ErrNegativeXP):
		return http.StatusBadRequest, ErrMsgNegativeXPError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	case errors.Is(err, domain.ErrBoxNotFound):
		return http.StatusNotFound, ErrMsgBoxNotFoundError
	case errors.Is(err, domain.ErrUnknownTier):
		return http.StatusInternalServerError, ErrMsgUnknownTierError
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusConflict, ErrMsgInvalidStatusError
	default:
		return http.StatusInternalServerError, ErrMsgServerErrorError
	}
}
