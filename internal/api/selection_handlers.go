package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moviestitch/moviestitch-client/internal/selection"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

func getSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, selectionResponse(cfg.Store.State()))
	}
}

func clearSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Store.Dispatch(store.SelectionCleared{})
		WriteJSON(w, http.StatusOK, selectionResponse(s))
	}
}

func toggleHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ToggleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.SubsceneID == "" || req.VideoID == "" {
			WriteError(w, http.StatusBadRequest, "subscene_id and video_id are required", "BAD_REQUEST")
			return
		}

		state := cfg.Store.State()
		_, sub := state.FindSubscene(req.SubsceneID)
		if sub == nil || sub.Video(req.VideoID) == nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}

		s := cfg.Store.Dispatch(store.VideoToggled{SubsceneID: req.SubsceneID, VideoID: req.VideoID})
		WriteJSON(w, http.StatusOK, selectionResponse(s))
	}
}

func randomSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !sceneExists(cfg, id) {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		s := cfg.Store.Dispatch(store.RandomSelected{SceneID: id, Src: randomSource(cfg)})
		WriteJSON(w, http.StatusOK, selectionResponse(s))
	}
}

func clearSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !sceneExists(cfg, id) {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		s := cfg.Store.Dispatch(store.SceneSelectionCleared{SceneID: id})
		WriteJSON(w, http.StatusOK, selectionResponse(s))
	}
}

func selectModeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req EnabledRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !sceneExists(cfg, id) {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		s := cfg.Store.Dispatch(store.SelectModeSet{SceneID: id, Enabled: req.Enabled})
		WriteJSON(w, http.StatusOK, EnabledRequest{Enabled: s.SelectMode[id]})
	}
}

func sceneExists(cfg ServerConfig, id string) bool {
	state := cfg.Store.State()
	_, scene := state.FindScene(id)
	return scene != nil
}

func randomSource(cfg ServerConfig) selection.RandomSource {
	if cfg.Random != nil {
		return cfg.Random
	}
	return selection.DefaultSource
}

func selectionResponse(s store.State) SelectionResponse {
	payload := selection.Derive(s.Selection)
	if payload == nil {
		payload = selection.Payload{}
	}
	return SelectionResponse{
		Selection: s.Selection,
		Payload:   payload,
		VideoIDs:  payload.Resolve(s.MultiChoice),
		Count:     s.Selection.Count(),
	}
}
