package api

import (
	"errors"
	"net/http"

	"github.com/moviestitch/moviestitch-client/internal/store"
	"github.com/moviestitch/moviestitch-client/internal/upload"
)

func startUploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UploadRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.SubsceneID == "" {
			WriteError(w, http.StatusBadRequest, "subscene_id is required", "BAD_REQUEST")
			return
		}

		media := upload.MediaLibrary
		switch upload.Media(req.Media) {
		case "", upload.MediaLibrary:
		case upload.MediaCamera:
			media = upload.MediaCamera
		default:
			WriteError(w, http.StatusBadRequest, "media must be camera or library", "BAD_REQUEST")
			return
		}

		src := upload.FileSource{Path: req.Path, Name: req.Name}
		err := cfg.Uploads.Start(r.Context(), req.SubsceneID, src, media)
		if err != nil && !errors.Is(err, upload.ErrCanceled) {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Store.State().Upload)
	}
}

func commentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CommentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		video, err := cfg.Uploads.SubmitComment(r.Context(), req.Comment)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, CommentResponse{Upload: cfg.Store.State().Upload, Video: video})
	}
}

func resetUploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Uploads.Reset()
		WriteJSON(w, http.StatusOK, store.Upload{Phase: store.UploadIdle})
	}
}
