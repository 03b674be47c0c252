package store

import (
	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/selection"
)

// Reduce applies a to s and returns the next state. s is not modified.
// Actions that reference unknown movies, scenes, subscenes or videos leave
// the state as it was.
func Reduce(s State, a Action) State {
	out := s.clone()

	switch a := a.(type) {
	case MoviesRequested:
		out.MoviesLoading = true
		out.MoviesError = ""
	case MoviesLoaded:
		out.Movies = catalog.Clone(a.Movies)
		out.MoviesLoading = false
		out.MoviesError = ""
		if out.SelectedMovie() == nil {
			out.SelectedMovieID = ""
		}
	case MoviesFailed:
		out.MoviesLoading = false
		out.MoviesError = a.Err
	case MovieSelected:
		if a.MovieID == "" || catalog.FindMovie(out.Movies, a.MovieID) != nil {
			out.SelectedMovieID = a.MovieID
		}

	case AIModeSet:
		out.AIMode = a.Enabled
	case SelectModeSet:
		if a.Enabled {
			out.SelectMode[a.SceneID] = true
		} else {
			delete(out.SelectMode, a.SceneID)
		}

	case VideoToggled:
		movie, sub := out.FindSubscene(a.SubsceneID)
		if sub == nil {
			break
		}
		if v := sub.Video(a.VideoID); v != nil {
			out.Selection = selection.Toggle(out.Selection, sub.ID, *v, movie.Type)
		}
	case RandomSelected:
		if _, scene := out.FindScene(a.SceneID); scene != nil && a.Src != nil {
			out.Selection = selection.SelectRandom(out.Selection, scene, a.Src)
		}
	case SceneSelectionCleared:
		if _, scene := out.FindScene(a.SceneID); scene != nil {
			out.Selection = selection.ClearScene(out.Selection, scene)
		}
	case SelectionCleared:
		out.Selection = selection.Clear()

	case PlaybackStarted:
		p := a.Playback
		if p.EndTime != nil {
			end := *p.EndTime
			p.EndTime = &end
		}
		out.Playback = &p
	case PlaybackDismissed:
		out.Playback = nil
		out.Selection = selection.Clear()

	case JobStarted:
		out.Jobs[a.Kind] = Job{
			Status:    JobPending,
			MovieID:   a.MovieID,
			VideoIDs:  append([]string(nil), a.VideoIDs...),
			UpdatedAt: a.At,
		}
	case JobCompleted:
		j := out.Jobs[a.Kind]
		j.Status = JobSucceeded
		j.URL = a.URL
		j.Error = ""
		j.UpdatedAt = a.At
		out.Jobs[a.Kind] = j
	case JobErrored:
		j := out.Jobs[a.Kind]
		j.Status = JobFailed
		j.URL = ""
		j.Error = a.Err
		j.UpdatedAt = a.At
		out.Jobs[a.Kind] = j
	case JobDismissed:
		movieID := out.Jobs[a.Kind].MovieID
		if movieID == "" {
			movieID = out.SelectedMovieID
		}
		if m := catalog.FindMovie(out.Movies, movieID); m != nil {
			for i := range m.Scenes {
				out.Selection = selection.ClearScene(out.Selection, &m.Scenes[i])
			}
		}
		out.Jobs[a.Kind] = Job{Status: JobIdle}

	case UploadStarted:
		out.Upload = Upload{Phase: UploadPermissionRequested, SubsceneID: a.SubsceneID}
	case UploadPhaseChanged:
		out.Upload.Phase = a.Phase
		out.Upload.Notice = a.Notice
	case UploadSending:
		out.Upload.Phase = UploadUploading
		out.Upload.Filename = a.Filename
		out.Upload.Notice = ""
	case UploadStaged:
		out.Upload.Phase = UploadAwaitingComment
		out.Upload.PendingKey = a.Key
		out.Upload.Filename = a.Filename
		out.Upload.Error = ""
	case UploadConfirmed:
		out.Upload.Phase = UploadSubmitted
		out.Upload.Error = ""
	case UploadFailed:
		out.Upload.Phase = UploadError
		out.Upload.Error = a.Err
	case UploadCleanup:
		out.Upload.PendingKey = ""
		out.Upload.SubsceneID = ""
		out.Upload.Filename = ""
	case UploadReset:
		out.Upload = Upload{Phase: UploadIdle}
	case VideoAdded:
		addVideo(&out, a.SubsceneID, a.Video)

	case AuthRequested:
		out.Auth.Loading = true
		out.Auth.Error = ""
	case AuthSucceeded:
		out.Auth = Auth{Authenticated: true, Token: a.Token}
		if a.User != nil {
			u := *a.User
			out.Auth.User = &u
		}
	case AuthFailed:
		out.Auth.Loading = false
		out.Auth.Error = a.Err
	case GuestEntered:
		out.Auth = Auth{Guest: true}
	case LoggedOut:
		out.Auth = Auth{}
		out.Selection = selection.Clear()

	case ResetRequested:
		out.Reset.Loading = true
		out.Reset.Error = ""
	case ResetOTPSent:
		out.Reset = PasswordReset{Step: ResetVerifyOTP, Email: a.Email, Message: a.Message}
	case ResetOTPVerified:
		out.Reset.Step = ResetNewPassword
		out.Reset.Loading = false
		out.Reset.ResetToken = a.ResetToken
		out.Reset.Message = a.Message
		out.Reset.Error = ""
	case ResetCompleted:
		out.Reset = PasswordReset{Step: ResetRequestOTP, Message: a.Message}
	case ResetFailed:
		out.Reset.Loading = false
		out.Reset.Error = a.Err
	case ResetCanceled:
		out.Reset = PasswordReset{Step: ResetRequestOTP}
	}

	return out
}

// addVideo appends v to the subscene, preferring the selected movie, and
// gives it the next position in that subscene.
func addVideo(s *State, subsceneID string, v catalog.Video) {
	order := make([]int, 0, len(s.Movies))
	for i := range s.Movies {
		if s.Movies[i].ID == s.SelectedMovieID {
			order = append([]int{i}, order...)
		} else {
			order = append(order, i)
		}
	}

	for _, mi := range order {
		for si := range s.Movies[mi].Scenes {
			scene := &s.Movies[mi].Scenes[si]
			for ssi := range scene.Subscenes {
				sub := &scene.Subscenes[ssi]
				if sub.ID != subsceneID {
					continue
				}
				if sub.Video(v.ID) != nil {
					return
				}
				v.SubsceneID = sub.ID
				v.Position = catalog.Position{Scene: si, Subscene: ssi, Video: len(sub.Videos)}
				sub.Videos = append(sub.Videos, v)
				return
			}
		}
	}
}
