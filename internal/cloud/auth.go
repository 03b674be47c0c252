package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// User is the account record returned by login and signup. Raw keeps the
// full object as the server sent it.
type User struct {
	ID    FlexString      `json:"id"`
	Name  FlexString      `json:"name"`
	Email FlexString      `json:"email"`
	Raw   json.RawMessage `json:"-"`
}

type AuthResult struct {
	Token string
	User  User
}

type SignupRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ResetPasswordRequest struct {
	Email                string `json:"email"`
	ResetToken           string `json:"reset_token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type OTPVerification struct {
	ResetToken string
	Message    string
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body, err := c.do(ctx, call{
		op:            "login",
		method:        http.MethodPost,
		path:          "/auth/login",
		body:          credentials{Email: email, Password: password},
		statusMessage: loginStatusMessage,
	})
	if err != nil {
		return nil, err
	}
	return decodeAuthResult("login", body)
}

func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	body, err := c.do(ctx, call{
		op:            "signup",
		method:        http.MethodPost,
		path:          "/auth/signup",
		body:          req,
		statusMessage: constantMessage("Signup failed"),
	})
	if err != nil {
		return nil, err
	}
	return decodeAuthResult("signup", body)
}

// decodeAuthResult requires both a token and a user object.
func decodeAuthResult(op string, body []byte) (*AuthResult, error) {
	var resp struct {
		Token FlexString      `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := decodeStrict(op, body, &resp); err != nil {
		return nil, err
	}

	rawUser := bytes.TrimSpace(resp.User)
	if resp.Token == "" || len(rawUser) == 0 || rawUser[0] != '{' {
		return nil, fmt.Errorf("%w: %s response lacks token or user", ErrMalformedResponse, op)
	}

	var user User
	if err := decodeStrict(op, rawUser, &user); err != nil {
		return nil, err
	}
	user.Raw = append(json.RawMessage(nil), rawUser...)

	return &AuthResult{Token: string(resp.Token), User: user}, nil
}

func (c *HTTPClient) RequestResetOTP(ctx context.Context, email string) (string, error) {
	body, err := c.do(ctx, call{
		op:            "request_reset_otp",
		method:        http.MethodPost,
		path:          "/request-reset-otp",
		body:          map[string]string{"email": email},
		statusMessage: constantMessage("Failed to send OTP"),
	})
	if err != nil {
		return "", err
	}
	return messageOr(body, "OTP sent"), nil
}

func (c *HTTPClient) VerifyResetOTP(ctx context.Context, email, otp string) (*OTPVerification, error) {
	body, err := c.do(ctx, call{
		op:            "verify_reset_otp",
		method:        http.MethodPost,
		path:          "/verify-reset-otp",
		body:          map[string]string{"email": email, "otp": otp},
		statusMessage: constantMessage("OTP verification failed"),
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		ResetToken FlexString `json:"reset_token"`
	}
	decodeLenient(body, &resp)
	if resp.ResetToken == "" {
		return nil, ErrMissingResetToken
	}

	return &OTPVerification{
		ResetToken: string(resp.ResetToken),
		Message:    messageOr(body, "OTP verified"),
	}, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	body, err := c.do(ctx, call{
		op:            "reset_password",
		method:        http.MethodPost,
		path:          "/reset-password",
		body:          req,
		statusMessage: constantMessage("Password reset failed"),
	})
	if err != nil {
		return "", err
	}
	return messageOr(body, "Password reset successful"), nil
}

func messageOr(body []byte, fallback string) string {
	if msg := strings.TrimSpace(messageField(body)); msg != "" {
		return msg
	}
	return fallback
}
