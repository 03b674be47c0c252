package api

import (
	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/selection"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type MoviesResponse struct {
	Movies  []catalog.Movie `json:"movies"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

type ToggleRequest struct {
	SubsceneID string `json:"subscene_id"`
	VideoID    string `json:"video_id"`
}

type SelectionResponse struct {
	Selection selection.Record  `json:"selection"`
	Payload   selection.Payload `json:"payload"`
	VideoIDs  []string          `json:"video_ids"`
	Count     int               `json:"count"`
}

type JobResponse struct {
	Kind store.JobKind `json:"kind"`
	store.Job
}

type PlaybackRequest struct {
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	StartTime float64  `json:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

type UploadRequest struct {
	SubsceneID string `json:"subscene_id"`
	Path       string `json:"path"`
	Name       string `json:"name,omitempty"`
	// Media is "camera" or "library". Defaults to library.
	Media string `json:"media,omitempty"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type CommentResponse struct {
	Upload store.Upload   `json:"upload"`
	Video  *catalog.Video `json:"video,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

type CompleteResetRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}
