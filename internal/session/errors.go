package session

import "errors"

// Validation errors carry the text shown to the user and are returned
// before any request is sent.
var (
	ErrMissingFields     = errors.New("Please fill in all fields")
	ErrPasswordMismatch  = errors.New("Passwords do not match")
	ErrInvalidEmail      = errors.New("Please enter a valid email address")
	ErrInvalidOTP        = errors.New("Please enter the code from your email")
	ErrPasswordTooShort  = errors.New("Password must be at least 6 characters")
	ErrResetTokenMissing = errors.New("Reset token missing. Please verify OTP again.")
)
