package api

import (
	"net/http"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
)

func authStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Store.State().Auth)
	}
}

func loginHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := cfg.Session.Login(r.Context(), req.Email, req.Password); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Store.State().Auth)
	}
}

func signupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if !decodeBody(w, r, &req) {
			return
		}
		err := cfg.Session.Signup(r.Context(), cloud.SignupRequest{
			Name:                 req.Name,
			Email:                req.Email,
			Password:             req.Password,
			PasswordConfirmation: req.PasswordConfirmation,
		})
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, cfg.Store.State().Auth)
	}
}

func guestHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Session.ContinueAsGuest()
		WriteJSON(w, http.StatusOK, cfg.Store.State().Auth)
	}
}

func logoutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.Logout(r.Context()); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func requestResetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := cfg.Session.RequestResetOTP(r.Context(), req.Email); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Store.State().Reset)
	}
}

func verifyResetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyOTPRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := cfg.Session.VerifyResetOTP(r.Context(), req.OTP); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Store.State().Reset)
	}
}

func completeResetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CompleteResetRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := cfg.Session.ResetPassword(r.Context(), req.Password, req.PasswordConfirmation); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, cfg.Store.State().Reset)
	}
}

func cancelResetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Session.CancelReset()
		w.WriteHeader(http.StatusNoContent)
	}
}
