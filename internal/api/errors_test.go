package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/generation"
	"github.com/moviestitch/moviestitch-client/internal/session"
	"github.com/moviestitch/moviestitch-client/internal/upload"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"in progress", fmt.Errorf("stream: %w", generation.ErrInProgress), http.StatusConflict, "IN_PROGRESS"},
		{"upload busy", upload.ErrBusy, http.StatusConflict, "IN_PROGRESS"},
		{"nothing pending", upload.ErrNothingPending, http.StatusConflict, "NOTHING_PENDING"},
		{"unknown subscene", fmt.Errorf("%w: %q", upload.ErrUnknownSubscene, "x"), http.StatusNotFound, "NOT_FOUND"},
		{"permission", upload.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{"empty file", upload.ErrEmptyFile, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"password mismatch", session.ErrPasswordMismatch, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not authenticated", fmt.Errorf("presign: %w", cloud.ErrNotAuthenticated), http.StatusUnauthorized, "NOT_AUTHENTICATED"},
		{"upstream 401", &cloud.StatusError{StatusCode: 401, Message: "Invalid credentials"}, http.StatusUnauthorized, "UPSTREAM_REJECTED"},
		{"upstream 500", &cloud.StatusError{StatusCode: 500}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"network", fmt.Errorf("%w: boom", cloud.ErrNetwork), http.StatusBadGateway, "NETWORK_ERROR"},
		{"missing url", cloud.ErrMissingVideoURL, http.StatusBadGateway, "INVALID_RESPONSE"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("classify() = %d %s, want %d %s", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{generation.ErrInProgress, "A movie is already being generated. Please wait."},
		{upload.ErrEmptyComment, "Comment cannot be empty"},
		{session.ErrPasswordTooShort, "Password must be at least 6 characters"},
		{fmt.Errorf("%w: dial", cloud.ErrNetwork), "Network error. Please check your internet connection and API URL."},
		{cloud.ErrMissingVideoURL, "No video URL received from server"},
	}

	for _, tt := range tests {
		if got := userMessage(tt.err); got != tt.want {
			t.Errorf("userMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
