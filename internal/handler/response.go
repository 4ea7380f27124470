package handler

// RESPONSE HELPERS:
// Every body this API sends, success or failure, is one Envelope:
//
//	{"success": true, "message": "Users retrieved successfully", "data": [...], "count": 2}
//	{"success": false, "message": "User with id 7 not found"}
//
// writeError maps domain errors (package apperror) to a status code and
// message. Anything that is not an *apperror.AppError is a store or internal
// failure: the client gets the caller's generic message, and the underlying
// error text only when exposeErrors is set (non-production).

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/users-api/internal/apperror"
)

// Envelope is the uniform JSON wrapper around every response body.
//
// Count is a pointer so that a list of zero users still reports "count": 0
// while other responses leave the key out.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

// writeError maps err to an envelope.
//
//	ErrValidation, ErrConflict → 400 with the AppError message
//	ErrNotFound                → 404 with the AppError message
//	anything else              → 500 with fallback, detail only if exposeErrors
func writeError(w http.ResponseWriter, err error, fallback string, exposeErrors bool) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
			writeFailure(w, http.StatusBadRequest, appErr.Message)
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeFailure(w, http.StatusNotFound, appErr.Message)
			return
		}
	}

	env := Envelope{Success: false, Message: fallback}
	if exposeErrors {
		env.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, env)
}
