package cloud

import (
	"context"
	"io"
)

// Client groups the remote API surfaces used by the client core.
type Client interface {
	Catalog() CatalogService
	Auth() AuthService
	Submissions() SubmissionService
	Stitch() StitchService
}

type CatalogService interface {
	FetchScripts(ctx context.Context) ([]RawScript, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	RequestResetOTP(ctx context.Context, email string) (string, error)
	VerifyResetOTP(ctx context.Context, email, otp string) (*OTPVerification, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error)
}

// SubmissionService covers the user upload path: presign, direct storage
// PUT and submission creation.
type SubmissionService interface {
	PresignUpload(ctx context.Context, filename string) (*PresignedUpload, error)
	PutObject(ctx context.Context, target *PresignedUpload, body io.Reader, size int64) error
	CreateSubmission(ctx context.Context, req SubmissionRequest) (*RawSubmission, error)
}

type StitchService interface {
	GenerateMovie(ctx context.Context, selectedVideos []string) (string, error)
	GenerateMovieMP4(ctx context.Context, selectedVideos []string) (string, error)
}
