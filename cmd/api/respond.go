package main

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"smartmatch/logging"
)

const (
	errCodeInvalidPayload = "invalid_payload"
	errCodeValidation     = "validation_error"
	errCodeInvalidState   = "invalid_state"
	errCodeNotFound       = "not_found"
	errCodeConflict       = "conflict"
	errCodeUnavailable    = "unavailable"
	errCodeInternal       = "internal_server_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError writes {code, message}. Server errors are logged with the
// underlying cause, which never reaches the client.
func respondError(w http.ResponseWriter, log logrus.FieldLogger, status int, code, message string, cause error) {
	if status >= http.StatusInternalServerError {
		entry := logging.OrDefault(log).WithField("status", status)
		if cause != nil {
			entry = entry.WithError(cause)
		}
		entry.Error(message)
	}
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}
