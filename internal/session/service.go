// Package session keeps the user's login, guest mode and password reset
// flow, persisting the auth token between runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/store"
)

const (
	minOTPLength      = 4
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	auth   cloud.AuthService
	kv     KV
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(auth cloud.AuthService, kv KV, st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		auth:   auth,
		kv:     kv,
		store:  st,
		logger: logging.WithComponent(logger, "session"),
		now:    time.Now,
	}
}

// Token returns the bearer token of the logged-in user, or "" for guests.
func (s *Service) Token(context.Context) (string, error) {
	return s.store.State().Auth.Token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingFields
	}

	s.store.Dispatch(store.AuthRequested{})
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return s.authFailed("login", err)
	}
	return s.establish(ctx, "login", res)
}

func (s *Service) Signup(ctx context.Context, req cloud.SignupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.PasswordConfirmation == "" {
		return ErrMissingFields
	}
	if req.Password != req.PasswordConfirmation {
		return ErrPasswordMismatch
	}

	s.store.Dispatch(store.AuthRequested{})
	res, err := s.auth.Signup(ctx, req)
	if err != nil {
		return s.authFailed("signup", err)
	}
	return s.establish(ctx, "signup", res)
}

// ContinueAsGuest browses without an account. Nothing is persisted.
func (s *Service) ContinueAsGuest() {
	s.store.Dispatch(store.GuestEntered{})
	s.logger.Info("continuing as guest")
}

// Restore loads a session saved by an earlier run. Both the token and the
// user must be present. A JWT whose exp has passed is discarded; tokens
// that are not JWTs are kept as they are.
func (s *Service) Restore(ctx context.Context) error {
	token, err := s.kv.Get(ctx, KeyAuthToken)
	if err != nil {
		return fmt.Errorf("read stored token: %w", err)
	}
	rawUser, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("read stored user: %w", err)
	}

	if token == "" || rawUser == "" {
		s.store.Dispatch(store.LoggedOut{})
		return nil
	}

	if expired(token, s.now()) {
		s.logger.Info("stored token expired", "token", logging.SanitizeToken(token))
		s.store.Dispatch(store.LoggedOut{})
		return s.kv.Remove(ctx, KeyAuthToken, KeyUser)
	}

	var user cloud.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn("stored user unreadable, discarding session", "error", err)
		s.store.Dispatch(store.LoggedOut{})
		return s.kv.Remove(ctx, KeyAuthToken, KeyUser)
	}

	s.store.Dispatch(store.AuthSucceeded{Token: token, User: toStoreUser(user)})
	s.logger.Info("session restored", "token", logging.SanitizeToken(token))
	return nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, KeyAuthToken, KeyUser); err != nil {
		return fmt.Errorf("remove stored session: %w", err)
	}
	s.store.Dispatch(store.LoggedOut{})
	s.logger.Info("logged out")
	return nil
}

// RequestResetOTP is the first step of the password reset.
func (s *Service) RequestResetOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	s.store.Dispatch(store.ResetRequested{})
	msg, err := s.auth.RequestResetOTP(ctx, email)
	if err != nil {
		return s.resetFailed("request_otp", err)
	}
	s.store.Dispatch(store.ResetOTPSent{Email: email, Message: msg})
	return nil
}

// VerifyResetOTP checks the code sent to the email from the first step.
func (s *Service) VerifyResetOTP(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)
	if len(otp) < minOTPLength {
		return ErrInvalidOTP
	}
	email := s.store.State().Reset.Email
	if email == "" {
		return ErrInvalidEmail
	}

	s.store.Dispatch(store.ResetRequested{})
	res, err := s.auth.VerifyResetOTP(ctx, email, otp)
	if err != nil {
		return s.resetFailed("verify_otp", err)
	}
	s.store.Dispatch(store.ResetOTPVerified{ResetToken: res.ResetToken, Message: res.Message})
	return nil
}

// ResetPassword completes the flow with the token from VerifyResetOTP.
func (s *Service) ResetPassword(ctx context.Context, password, confirmation string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	reset := s.store.State().Reset
	if reset.ResetToken == "" {
		return ErrResetTokenMissing
	}

	s.store.Dispatch(store.ResetRequested{})
	msg, err := s.auth.ResetPassword(ctx, cloud.ResetPasswordRequest{
		Email:                reset.Email,
		ResetToken:           reset.ResetToken,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		return s.resetFailed("reset_password", err)
	}
	s.store.Dispatch(store.ResetCompleted{Message: msg})
	return nil
}

func (s *Service) CancelReset() {
	s.store.Dispatch(store.ResetCanceled{})
}

func (s *Service) establish(ctx context.Context, op string, res *cloud.AuthResult) error {
	rawUser := res.User.Raw
	if len(rawUser) == 0 {
		b, err := json.Marshal(res.User)
		if err != nil {
			return s.authFailed(op, fmt.Errorf("encode user: %w", err))
		}
		rawUser = b
	}

	if err := s.kv.Set(ctx, KeyAuthToken, res.Token); err != nil {
		return s.authFailed(op, fmt.Errorf("persist token: %w", err))
	}
	if err := s.kv.Set(ctx, KeyUser, string(rawUser)); err != nil {
		return s.authFailed(op, fmt.Errorf("persist user: %w", err))
	}

	s.store.Dispatch(store.AuthSucceeded{Token: res.Token, User: toStoreUser(res.User)})
	s.logger.Info("authenticated", "op", op, "user_id", string(res.User.ID), "token", logging.SanitizeToken(res.Token))
	return nil
}

func (s *Service) authFailed(op string, err error) error {
	s.logger.Warn("authentication failed", "op", op, "error", err)
	s.store.Dispatch(store.AuthFailed{Err: cloud.UserMessage(err)})
	return err
}

func (s *Service) resetFailed(op string, err error) error {
	s.logger.Warn("password reset step failed", "op", op, "error", err)
	s.store.Dispatch(store.ResetFailed{Err: cloud.UserMessage(err)})
	return err
}

func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func toStoreUser(u cloud.User) *store.User {
	return &store.User{ID: string(u.ID), Name: string(u.Name), Email: string(u.Email)}
}
