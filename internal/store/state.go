// Package store is the client's single state container. State changes only
// through Dispatch, which applies one action at a time with Reduce.
package store

import (
	"time"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/selection"
)

// JobStatus is the lifecycle of one stitch workflow.
type JobStatus string

const (
	JobIdle      JobStatus = "idle"
	JobPending   JobStatus = "pending"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// JobKind identifies a stitch workflow.
type JobKind string

const (
	JobStream   JobKind = "stream"
	JobDownload JobKind = "download"
)

// Job is the latest result of one workflow kind.
type Job struct {
	Status    JobStatus `json:"status"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	MovieID   string    `json:"movie_id,omitempty"`
	VideoIDs  []string  `json:"video_ids,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UploadPhase is a step of the upload pipeline.
type UploadPhase string

const (
	UploadIdle                UploadPhase = "idle"
	UploadPermissionRequested UploadPhase = "permission_requested"
	UploadCapturing           UploadPhase = "capturing"
	UploadPicking             UploadPhase = "picking"
	UploadUploading           UploadPhase = "uploading"
	UploadAwaitingComment     UploadPhase = "awaiting_comment"
	UploadSubmitted           UploadPhase = "submitted"
	UploadError               UploadPhase = "error"
)

// Busy reports whether a pipeline run is between permission and upload.
func (p UploadPhase) Busy() bool {
	switch p {
	case UploadPermissionRequested, UploadCapturing, UploadPicking, UploadUploading:
		return true
	}
	return false
}

type Upload struct {
	Phase      UploadPhase `json:"phase"`
	SubsceneID string      `json:"subscene_id,omitempty"`
	PendingKey string      `json:"pending_key,omitempty"`
	Filename   string      `json:"filename,omitempty"`
	Error      string      `json:"error,omitempty"`
	// Notice is a non-error message, such as a permission denial.
	Notice string `json:"notice,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Auth struct {
	Authenticated bool   `json:"authenticated"`
	Guest         bool   `json:"guest"`
	Loading       bool   `json:"loading"`
	User          *User  `json:"user,omitempty"`
	Error         string `json:"error,omitempty"`
	// Token is held for the session but never serialised.
	Token string `json:"-"`
}

// ResetStep is the position in the three-step password reset.
type ResetStep int

const (
	ResetRequestOTP ResetStep = iota + 1
	ResetVerifyOTP
	ResetNewPassword
)

type PasswordReset struct {
	Step    ResetStep `json:"step"`
	Email   string    `json:"email,omitempty"`
	Loading bool      `json:"loading"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
	// ResetToken authorises the final step and is never serialised.
	ResetToken string `json:"-"`
}

// Playback is the video currently open in the player.
type Playback struct {
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	StartTime float64  `json:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

type State struct {
	Movies          []catalog.Movie   `json:"movies"`
	MoviesLoading   bool              `json:"movies_loading"`
	MoviesError     string            `json:"movies_error,omitempty"`
	SelectedMovieID string            `json:"selected_movie_id,omitempty"`
	AIMode          bool              `json:"ai_mode"`
	SelectMode      map[string]bool   `json:"select_mode"`
	Selection       selection.Record  `json:"selection"`
	Playback        *Playback         `json:"playback,omitempty"`
	Jobs            map[JobKind]Job   `json:"jobs"`
	Upload          Upload            `json:"upload"`
	Auth            Auth              `json:"auth"`
	Reset           PasswordReset     `json:"reset"`
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{
		SelectMode: map[string]bool{},
		Selection:  selection.Clear(),
		Jobs: map[JobKind]Job{
			JobStream:   {Status: JobIdle},
			JobDownload: {Status: JobIdle},
		},
		Upload: Upload{Phase: UploadIdle},
		Reset:  PasswordReset{Step: ResetRequestOTP},
	}
}

// SelectedMovie returns the selected movie, or nil.
func (s *State) SelectedMovie() *catalog.Movie {
	if s.SelectedMovieID == "" {
		return nil
	}
	return catalog.FindMovie(s.Movies, s.SelectedMovieID)
}

// FindScene looks in the selected movie first, then in every movie.
func (s *State) FindScene(sceneID string) (*catalog.Movie, *catalog.Scene) {
	if m := s.SelectedMovie(); m != nil {
		if sc := m.Scene(sceneID); sc != nil {
			return m, sc
		}
	}
	for i := range s.Movies {
		if sc := s.Movies[i].Scene(sceneID); sc != nil {
			return &s.Movies[i], sc
		}
	}
	return nil, nil
}

// FindSubscene looks in the selected movie first, then in every movie.
func (s *State) FindSubscene(subsceneID string) (*catalog.Movie, *catalog.Subscene) {
	if m := s.SelectedMovie(); m != nil {
		if sub := m.Subscene(subsceneID); sub != nil {
			return m, sub
		}
	}
	for i := range s.Movies {
		if sub := s.Movies[i].Subscene(subsceneID); sub != nil {
			return &s.Movies[i], sub
		}
	}
	return nil, nil
}

// MultiChoice reports whether subsceneID belongs to a multi-choice movie.
// Subscenes no loaded movie knows keep every selected video; Toggle has
// already limited single-choice subscenes to one.
func (s *State) MultiChoice(subsceneID string) bool {
	movie, _ := s.FindSubscene(subsceneID)
	if movie == nil {
		return true
	}
	return movie.Type.MultiChoice()
}

// clone deep-copies s so snapshots never alias store internals.
func (s State) clone() State {
	out := s
	out.Movies = catalog.Clone(s.Movies)
	out.Selection = s.Selection.Clone()

	out.SelectMode = make(map[string]bool, len(s.SelectMode))
	for k, v := range s.SelectMode {
		out.SelectMode[k] = v
	}

	out.Jobs = make(map[JobKind]Job, len(s.Jobs))
	for k, j := range s.Jobs {
		j.VideoIDs = append([]string(nil), j.VideoIDs...)
		out.Jobs[k] = j
	}

	if s.Playback != nil {
		p := *s.Playback
		if p.EndTime != nil {
			end := *p.EndTime
			p.EndTime = &end
		}
		out.Playback = &p
	}
	if s.Auth.User != nil {
		u := *s.Auth.User
		out.Auth.User = &u
	}
	return out
}
