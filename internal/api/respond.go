package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mysteryvault/storefront/internal/service"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondServiceError maps the service error taxonomy to HTTP status codes.
// Anything that is not a tagged service error becomes an opaque 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Error().Err(err).Msg("unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	var status int
	switch svcErr.Code {
	case service.CodeValidation, service.CodeInvalidTransition:
		status = http.StatusBadRequest
	case service.CodeUnauthorized:
		status = http.StatusUnauthorized
	case service.CodePaymentFailed:
		status = http.StatusPaymentRequired
	case service.CodeForbidden:
		status = http.StatusForbidden
	case service.CodeNotFound:
		status = http.StatusNotFound
	case service.CodeConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	respondError(w, status, string(svcErr.Code), svcErr.Message)
}
