// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/taibuivan/edura/internal/authstate"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/validate"
	"github.com/taibuivan/edura/internal/session"
	"github.com/taibuivan/edura/internal/transport"
)

// AuthService covers account lifecycle endpoints.
type AuthService struct {
	transport    *transport.Client
	sessions     *session.Manager
	synchronizer *authstate.Synchronizer
	logger       *slog.Logger
}

// # Payloads

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Validate applies the account rules.
func (input RegisterInput) Validate() error {
	validator := &validate.Validator{}
	validator.
		Required("email", input.Email).
		Email("email", input.Email).
		MinLen("password", input.Password, constants.MinPasswordLength).
		Required("full_name", input.FullName).
		MaxLen("full_name", input.FullName, 100)
	return validator.Err()
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate applies the credential rules.
func (input LoginInput) Validate() error {
	validator := &validate.Validator{}
	validator.
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password)
	return validator.Err()
}

type registerResponse struct {
	UserID int64 `json:"userId"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// # Operations

// Register creates an account. The user still has to log in afterwards.
func (service *AuthService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	if err := input.Validate(); err != nil {
		return 0, err
	}

	var response registerResponse
	err := service.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     constants.PathRegister,
		Body:     input,
		SkipAuth: true,
	}, &response)
	if err != nil {
		return 0, err
	}

	return response.UserID, nil
}

// Login authenticates with email and password and establishes the session.
func (service *AuthService) Login(ctx context.Context, input LoginInput) (*session.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return service.establish(ctx, constants.PathLogin, input)
}

// GoogleLogin authenticates with an identity token from the federated provider.
func (service *AuthService) GoogleLogin(ctx context.Context, idToken string) (*session.User, error) {
	if idToken == "" {
		return nil, validate.RequiredError("idToken", "This field is required")
	}
	return service.establish(ctx, constants.PathGoogleLogin, googleLoginRequest{IDToken: idToken})
}

// establish posts credentials, persists the returned session and announces it.
func (service *AuthService) establish(ctx context.Context, path string, body any) (*session.User, error) {
	var established session.Session
	err := service.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     path,
		Body:     body,
		SkipAuth: true,
	}, &established)
	if err != nil {
		return nil, err
	}

	if !established.Complete() {
		return nil, apperr.Internal(errors.New("login response is missing tokens or user"))
	}

	if err := service.sessions.Save(ctx, &established); err != nil {
		return nil, apperr.Internal(fmt.Errorf("api_save_session_failed: %w", err))
	}

	if err := service.synchronizer.SetAuth(ctx, true, established.User); err != nil {
		return nil, apperr.Internal(err)
	}

	service.logger.InfoContext(ctx, "user_logged_in",
		slog.Int64("user_id", established.User.ID),
		slog.String("role", string(established.User.Role)),
	)

	return established.User, nil
}

// Refresh mints a new access token from the stored refresh token.
func (service *AuthService) Refresh(ctx context.Context) error {
	_, err := service.transport.Refresh(ctx)
	return err
}

// Logout revokes the refresh token on the server and always clears the local
// session, even when the server call fails.
func (service *AuthService) Logout(ctx context.Context) error {
	refreshToken, _ := service.sessions.RefreshToken(ctx)

	if refreshToken != "" {
		err := service.transport.Do(ctx, transport.Request{
			Method:   http.MethodPost,
			Path:     constants.PathLogout,
			Body:     logoutRequest{RefreshToken: refreshToken},
			SkipAuth: true, // The refresh token is the credential.
		}, nil)
		if err != nil {
			service.logger.WarnContext(ctx, "logout_request_failed", slog.Any("error", err))
		}
	}

	return service.synchronizer.SetAuth(ctx, false, nil)
}

// ForgotPassword asks the backend to send a reset link.
func (service *AuthService) ForgotPassword(ctx context.Context, email string) error {
	validator := &validate.Validator{}
	if err := validator.Required("email", email).Email("email", email).Err(); err != nil {
		return err
	}

	return service.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     constants.PathForgotPassword,
		Body:     forgotPasswordRequest{Email: email},
		SkipAuth: true,
	}, nil)
}

// ResetPassword sets a new password with the token from the reset link.
func (service *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	validator := &validate.Validator{}
	validator.
		Required("token", token).
		MinLen("newPassword", newPassword, constants.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	return service.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     constants.PathResetPassword + url.PathEscape(token),
		Body:     resetPasswordRequest{NewPassword: newPassword},
		SkipAuth: true,
	}, nil)
}
