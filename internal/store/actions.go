package store

import (
	"time"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/selection"
)

// Action is one state transition request. Only the types in this file
// implement it.
type Action interface {
	isAction()
}

type (
	MoviesRequested struct{}
	MoviesLoaded    struct{ Movies []catalog.Movie }
	MoviesFailed    struct{ Err string }
	MovieSelected   struct{ MovieID string }

	AIModeSet     struct{ Enabled bool }
	SelectModeSet struct {
		SceneID string
		Enabled bool
	}

	// VideoToggled toggles a video using the type of the movie that owns
	// the subscene.
	VideoToggled struct {
		SubsceneID string
		VideoID    string
	}
	RandomSelected struct {
		SceneID string
		Src     selection.RandomSource
	}
	SceneSelectionCleared struct{ SceneID string }
	SelectionCleared      struct{}

	PlaybackStarted struct{ Playback Playback }
	// PlaybackDismissed closes the player and clears every selection.
	PlaybackDismissed struct{}

	JobStarted struct {
		Kind     JobKind
		MovieID  string
		VideoIDs []string
		At       time.Time
	}
	JobCompleted struct {
		Kind JobKind
		URL  string
		At   time.Time
	}
	JobErrored struct {
		Kind JobKind
		Err  string
		At   time.Time
	}
	// JobDismissed resets the job and clears the selection of its movie's
	// scenes.
	JobDismissed struct{ Kind JobKind }

	UploadStarted      struct{ SubsceneID string }
	UploadPhaseChanged struct {
		Phase  UploadPhase
		Notice string
	}
	// UploadSending enters the uploading phase for a named file.
	UploadSending struct{ Filename string }
	UploadStaged  struct {
		Key      string
		Filename string
	}
	UploadConfirmed struct{}
	UploadFailed    struct{ Err string }
	// UploadCleanup drops the pending key and subscene whatever the outcome.
	UploadCleanup struct{}
	UploadReset   struct{}
	VideoAdded    struct {
		SubsceneID string
		Video      catalog.Video
	}

	AuthRequested struct{}
	AuthSucceeded struct {
		Token string
		User  *User
	}
	AuthFailed   struct{ Err string }
	GuestEntered struct{}
	LoggedOut    struct{}

	ResetRequested   struct{}
	ResetOTPSent     struct{ Email, Message string }
	ResetOTPVerified struct{ ResetToken, Message string }
	ResetCompleted   struct{ Message string }
	ResetFailed      struct{ Err string }
	ResetCanceled    struct{}
)

func (MoviesRequested) isAction()       {}
func (MoviesLoaded) isAction()          {}
func (MoviesFailed) isAction()          {}
func (MovieSelected) isAction()         {}
func (AIModeSet) isAction()             {}
func (SelectModeSet) isAction()         {}
func (VideoToggled) isAction()          {}
func (RandomSelected) isAction()        {}
func (SceneSelectionCleared) isAction() {}
func (SelectionCleared) isAction()      {}
func (PlaybackStarted) isAction()       {}
func (PlaybackDismissed) isAction()     {}
func (JobStarted) isAction()            {}
func (JobCompleted) isAction()          {}
func (JobErrored) isAction()            {}
func (JobDismissed) isAction()          {}
func (UploadStarted) isAction()         {}
func (UploadPhaseChanged) isAction()    {}
func (UploadSending) isAction()         {}
func (UploadStaged) isAction()          {}
func (UploadConfirmed) isAction()       {}
func (UploadFailed) isAction()          {}
func (UploadCleanup) isAction()         {}
func (UploadReset) isAction()           {}
func (VideoAdded) isAction()            {}
func (AuthRequested) isAction()         {}
func (AuthSucceeded) isAction()         {}
func (AuthFailed) isAction()            {}
func (GuestEntered) isAction()          {}
func (LoggedOut) isAction()             {}
func (ResetRequested) isAction()        {}
func (ResetOTPSent) isAction()          {}
func (ResetOTPVerified) isAction()      {}
func (ResetCompleted) isAction()        {}
func (ResetFailed) isAction()           {}
func (ResetCanceled) isAction()         {}
