package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/generation"
	"github.com/moviestitch/moviestitch-client/internal/session"
	"github.com/moviestitch/moviestitch-client/internal/upload"
)

const emptySelectionMessage = "Please select at least one video"

// writeServiceError maps an error from the core packages to a status, a
// code and the message the user should see.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed", "status", status, "code", code, "error", err)
	}
	WriteError(w, status, userMessage(err), code)
}

func userMessage(err error) string {
	if errors.Is(err, generation.ErrInProgress) {
		return "A movie is already being generated. Please wait."
	}
	return upload.Message(err)
}

func classify(err error) (int, string) {
	var statusErr *cloud.StatusError

	switch {
	case errors.Is(err, generation.ErrInProgress), errors.Is(err, upload.ErrBusy):
		return http.StatusConflict, "IN_PROGRESS"
	case errors.Is(err, upload.ErrNothingPending):
		return http.StatusConflict, "NOTHING_PENDING"
	case errors.Is(err, upload.ErrUnknownSubscene):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, upload.ErrPermissionDenied):
		return http.StatusForbidden, "PERMISSION_DENIED"
	case errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrEmptyComment),
		errors.Is(err, session.ErrMissingFields),
		errors.Is(err, session.ErrPasswordMismatch),
		errors.Is(err, session.ErrInvalidEmail),
		errors.Is(err, session.ErrInvalidOTP),
		errors.Is(err, session.ErrPasswordTooShort),
		errors.Is(err, session.ErrResetTokenMissing):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, cloud.ErrNotAuthenticated):
		return http.StatusUnauthorized, "NOT_AUTHENTICATED"
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
			return statusErr.StatusCode, "UPSTREAM_REJECTED"
		}
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	case errors.Is(err, cloud.ErrNetwork):
		return http.StatusBadGateway, "NETWORK_ERROR"
	case errors.Is(err, cloud.ErrMalformedResponse):
		return http.StatusBadGateway, "INVALID_RESPONSE"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
