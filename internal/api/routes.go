package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware())
	r.Use(CORSAllowlist())
	r.Use(LoopbackGuard())

	r.Get("/health", healthHandler(cfg))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.KV, cfg.Logger))

		r.Get("/state", stateHandler(cfg))

		r.Get("/movies", listMoviesHandler(cfg))
		r.Post("/movies/refresh", refreshMoviesHandler(cfg))
		r.Get("/movies/{id}", getMovieHandler(cfg))
		r.Post("/movies/{id}/select", selectMovieHandler(cfg))
		r.Put("/ai-mode", aiModeHandler(cfg))

		r.Get("/selection", getSelectionHandler(cfg))
		r.Delete("/selection", clearSelectionHandler(cfg))
		r.Post("/selection/toggle", toggleHandler(cfg))
		r.Post("/scenes/{id}/random", randomSceneHandler(cfg))
		r.Delete("/scenes/{id}/selection", clearSceneHandler(cfg))
		r.Put("/scenes/{id}/select-mode", selectModeHandler(cfg))

		r.Post("/generate", stitchHandler(cfg, store.JobStream))
		r.Post("/download", stitchHandler(cfg, store.JobDownload))
		r.Delete("/generate", dismissHandler(cfg, store.JobStream))
		r.Delete("/download", dismissHandler(cfg, store.JobDownload))

		r.Put("/playback", startPlaybackHandler(cfg))
		r.Delete("/playback", dismissPlaybackHandler(cfg))

		r.Post("/uploads", startUploadHandler(cfg))
		r.Post("/uploads/comment", commentHandler(cfg))
		r.Delete("/uploads", resetUploadHandler(cfg))

		r.Get("/auth/status", authStatusHandler(cfg))
		r.Post("/auth/login", loginHandler(cfg))
		r.Post("/auth/signup", signupHandler(cfg))
		r.Post("/auth/guest", guestHandler(cfg))
		r.Post("/auth/logout", logoutHandler(cfg))
		r.Post("/auth/reset/request", requestResetHandler(cfg))
		r.Post("/auth/reset/verify", verifyResetHandler(cfg))
		r.Post("/auth/reset/complete", completeResetHandler(cfg))
		r.Delete("/auth/reset", cancelResetHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func stateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Store.State())
	}
}

func listMoviesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Store.State()
		WriteJSON(w, http.StatusOK, moviesResponse(s))
	}
}

func refreshMoviesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := cfg.Movies.Refresh(r.Context()); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, moviesResponse(cfg.Store.State()))
	}
}

func getMovieHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Store.State()
		movie := catalog.FindMovie(s.Movies, chi.URLParam(r, "id"))
		if movie == nil {
			WriteError(w, http.StatusNotFound, "movie not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, movie)
	}
}

func selectMovieHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if catalog.FindMovie(cfg.Store.State().Movies, id) == nil {
			WriteError(w, http.StatusNotFound, "movie not found", "NOT_FOUND")
			return
		}
		s := cfg.Store.Dispatch(store.MovieSelected{MovieID: id})
		WriteJSON(w, http.StatusOK, s.SelectedMovie())
	}
}

func aiModeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EnabledRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s := cfg.Store.Dispatch(store.AIModeSet{Enabled: req.Enabled})
		WriteJSON(w, http.StatusOK, EnabledRequest{Enabled: s.AIMode})
	}
}

func moviesResponse(s store.State) MoviesResponse {
	movies := s.Movies
	if movies == nil {
		movies = []catalog.Movie{}
	}
	return MoviesResponse{Movies: movies, Loading: s.MoviesLoading, Error: s.MoviesError}
}

// decodeBody decodes a JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}
