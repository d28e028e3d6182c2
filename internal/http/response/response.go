// Package response writes the API's JSON envelope from plain net/http handlers
// and middleware that run outside huma, such as the rate limiter and recoverer.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/store"
)

// Version is the envelope schema version, sent as "v".
const Version = 1

// Envelope is the success shape and the shape of uncoded errors.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope is the shape of errors that carry a machine-readable code.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// JSON writes a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Envelope{Version: Version, Success: status < 400, Data: data}, logger)
}

// Success writes a 200 OK envelope.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// NoContent writes a 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an uncoded error envelope.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	write(w, status, Envelope{Version: Version, Success: false, Error: message}, logger)
}

// CodedError writes an error envelope with a code.
func CodedError(w http.ResponseWriter, status int, code, message string, details any, logger *slog.Logger) {
	write(w, status, ErrorEnvelope{Version: Version, Success: false, Code: code, Message: message, Details: details}, logger)
}

// TooManyRequests writes a 429 with code "rate_limited".
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	CodedError(w, http.StatusTooManyRequests, "rate_limited", message, nil, logger)
}

// InternalError writes a 500 with code "internal".
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	CodedError(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), "Oops... something went wrong", nil, logger)
}

// HandleError maps domain and store errors to their status and writes the envelope.
// Anything unrecognized is logged and reported as a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		CodedError(w, domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, domainErr.Details, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), storeErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, logger)
}
