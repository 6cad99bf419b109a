package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"construct-hq/loom/pkg/completion"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error.
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants.
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeNotFound       = "not_found"
	ErrorTypeServerError    = "server_error"
)

// Error code constants.
const (
	CodeInvalidJSON     = "invalid_json"
	CodeInvalidMessage  = "invalid_message"
	CodeBodyTooLarge    = "body_too_large"
	CodeMissingDefault  = "missing_default"
	CodeRecordNotFound  = "record_not_found"
	CodeNoBackend       = "no_backend"
	CodeAssemblyFailure = "assembly_failed"
)

// writeError writes an ErrorResponse with the given status.
func writeError(w http.ResponseWriter, status int, errType, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Message: message, Type: errType, Code: code}})
}

// writeResolutionError maps a Prepare failure onto an HTTP answer.
func writeResolutionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, completion.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidMessage, err.Error())
	case errors.Is(err, completion.ErrNoConnection), errors.Is(err, completion.ErrNoSettings):
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeMissingDefault, err.Error())
	case errors.Is(err, completion.ErrConnectionNotFound), errors.Is(err, completion.ErrSettingsNotFound):
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, CodeRecordNotFound, err.Error())
	case errors.Is(err, completion.ErrNoBackend):
		writeError(w, http.StatusInternalServerError, ErrorTypeServerError, CodeNoBackend, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, ErrorTypeServerError, CodeAssemblyFailure, "failed to assemble prompt")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
