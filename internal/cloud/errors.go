package cloud

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps transport failures where no HTTP response was received.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse marks a 2xx response whose body lacks the fields
	// the client needs.
	ErrMalformedResponse = errors.New("invalid response from server")

	// ErrNotAuthenticated is returned before any request is sent when an
	// authenticated endpoint is called without a stored token.
	ErrNotAuthenticated = errors.New("not logged in")

	ErrInvalidPresignedURL = &shapeError{msg: "invalid presigned URL"}
	ErrInvalidPresignedKey = &shapeError{msg: "invalid presigned key"}
	ErrMissingVideoURL     = &shapeError{msg: "No video URL received from server"}
	ErrMissingResetToken   = &shapeError{msg: "No reset token received from server"}
)

// shapeError is a malformed-response error with its own user message.
type shapeError struct {
	msg string
}

func (e *shapeError) Error() string { return e.msg }

func (e *shapeError) Is(target error) bool { return target == ErrMalformedResponse }

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	// Message is the human readable message: the JSON "message" field of the
	// body when present, otherwise a default for the status code.
	Message string
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// defaultStatusMessage is used when the body carries no message.
func defaultStatusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "API endpoint not found. Please check your configuration."
	default:
		return fmt.Sprintf("Request failed with status %d", status)
	}
}

func loginStatusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Invalid credentials"
	case http.StatusUnprocessableEntity:
		return "Validation failed"
	case http.StatusNotFound:
		return defaultStatusMessage(status)
	default:
		return fmt.Sprintf("Login failed with status %d", status)
	}
}

func constantMessage(msg string) func(int) string {
	return func(status int) string {
		if status == http.StatusNotFound {
			return defaultStatusMessage(status)
		}
		return msg
	}
}

// UserMessage maps an error from this package to the one-shot message shown
// to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}

	var shapeErr *shapeError
	if errors.As(err, &shapeErr) {
		return shapeErr.msg
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return "Network error. Please check your internet connection and API URL."
	case errors.Is(err, ErrMalformedResponse):
		return "Invalid response from server"
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in to continue."
	}
	return err.Error()
}
