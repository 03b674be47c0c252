package api

import (
	"net/http"

	"github.com/moviestitch/moviestitch-client/internal/store"
)

// stitchHandler runs the workflow of kind and answers once the server has
// returned a URL or failed.
func stitchHandler(cfg ServerConfig, kind store.JobKind) http.HandlerFunc {
	run := cfg.Generation.Generate
	if kind == store.JobDownload {
		run = cfg.Generation.Download
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Store.State()
		if !s.AIMode && s.Selection.Count() == 0 {
			WriteError(w, http.StatusBadRequest, emptySelectionMessage, "EMPTY_SELECTION")
			return
		}

		if _, err := run(r.Context()); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		job := cfg.Store.State().Jobs[kind]
		WriteJSON(w, http.StatusOK, JobResponse{Kind: kind, Job: job})
	}
}

func dismissHandler(cfg ServerConfig, kind store.JobKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Generation.Dismiss(kind)
		w.WriteHeader(http.StatusNoContent)
	}
}

func startPlaybackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlaybackRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.URL == "" {
			WriteError(w, http.StatusBadRequest, "url is required", "BAD_REQUEST")
			return
		}
		if req.EndTime != nil && *req.EndTime <= req.StartTime {
			WriteError(w, http.StatusBadRequest, "end_time must be after start_time", "BAD_REQUEST")
			return
		}

		s := cfg.Store.Dispatch(store.PlaybackStarted{Playback: store.Playback{
			URL:       req.URL,
			Title:     req.Title,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		}})
		WriteJSON(w, http.StatusOK, s.Playback)
	}
}

func dismissPlaybackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Store.Dispatch(store.PlaybackDismissed{})
		w.WriteHeader(http.StatusNoContent)
	}
}
