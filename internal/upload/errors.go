package upload

import (
	"errors"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
)

var (
	ErrEmptyFile        = errors.New("selected video file is empty")
	ErrEmptyComment     = errors.New("comment is required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNothingPending   = errors.New("no uploaded video is waiting for a comment")
	ErrBusy             = errors.New("an upload is already in progress")
	ErrCanceled         = errors.New("upload canceled")
	ErrUnknownSubscene  = errors.New("unknown subscene")
)

// Message returns the text shown to the user for an upload error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return "The selected video is empty."
	case errors.Is(err, ErrEmptyComment):
		return "Comment cannot be empty"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, ErrNothingPending):
		return "No uploaded video is waiting for a comment"
	case errors.Is(err, ErrBusy):
		return "An upload is already in progress"
	case errors.Is(err, ErrUnknownSubscene):
		return "Subscene not found"
	}
	return cloud.UserMessage(err)
}
