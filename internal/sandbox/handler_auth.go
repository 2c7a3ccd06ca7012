// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/edura/internal/api"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/ctxutil"
	"github.com/taibuivan/edura/internal/platform/respond"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/platform/validate"
	requestutil "github.com/taibuivan/edura/internal/platform/request"
	"github.com/taibuivan/edura/internal/session"
)

// loginResponse is the established session returned by login endpoints.
type loginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *session.User `json:"user"`
}

// register handles POST /auth/register.
//
// # Returns
//   - 201 with {userId}.
//   - 400 if validation rules fail.
//   - 409 if the email is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────
	var input api.RegisterInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := input.Validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Security ───────────────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	// ── 3. Persistence ────────────────────────────────────────────────────
	user, err := handler.store.CreateAccount(session.User{
		Email:    input.Email,
		FullName: strings.TrimSpace(input.FullName),
		Role:     sec.RoleStudent, // Rule: self-registration always yields a student
	}, hashedPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]int64{"userId": user.ID})
}

// login handles POST /auth/login.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input api.LoginInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := input.Validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Same message for unknown email and wrong password, to prevent enumeration.
	found, ok := handler.store.AccountByEmail(input.Email)
	if !ok || !sec.CheckPasswordHash(input.Password, found.PasswordHash) {
		respond.Error(writer, request, apperr.Unauthorized("Invalid email or password"))
		return
	}

	established, err := handler.issueSession(request.Context(), found.User)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, established)
}

// googleLogin handles POST /auth/google-login.
//
// # Security
//
// The sandbox has no Google credentials, so the identity token's signature is
// NOT verified; only its email and name claims are read. Unknown emails get a
// new student account.
func (handler *Handler) googleLogin(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		IDToken string `json:"idToken"`
	}
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(input.IDToken, claims); err != nil {
		respond.Error(writer, request, apperr.Unauthorized("Invalid identity token"))
		return
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if email == "" {
		respond.Error(writer, request, apperr.Unauthorized("Identity token carries no email"))
		return
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user, err := handler.federatedAccount(email, name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	established, err := handler.issueSession(request.Context(), user)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, established)
}

// federatedAccount returns the account for email, creating it on first sign-in.
func (handler *Handler) federatedAccount(email, name string) (session.User, error) {
	if found, ok := handler.store.AccountByEmail(email); ok {
		return found.User, nil
	}

	// Federated accounts cannot log in with a password until they reset it.
	unusable, err := sec.GenerateSecureToken(constants.RefreshTokenLength)
	if err != nil {
		return session.User{}, apperr.Internal(err)
	}
	hashedPassword, err := sec.HashPassword(unusable)
	if err != nil {
		return session.User{}, apperr.Internal(err)
	}

	return handler.store.CreateAccount(session.User{Email: email, FullName: name, Role: sec.RoleStudent}, hashedPassword)
}

// issueSession mints an access token and a tracked refresh token for user.
func (handler *Handler) issueSession(ctx context.Context, user session.User) (*loginResponse, error) {
	accessToken, err := handler.tokens.GenerateAccessToken(user.ID, user.Email, user.Role, handler.cfg.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("sandbox_access_token_failed: %w", err))
	}

	refreshToken, err := sec.GenerateSecureToken(constants.RefreshTokenLength)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("sandbox_refresh_token_failed: %w", err))
	}
	handler.store.SaveRefreshSession(sec.HashToken(refreshToken), user.ID, handler.now().Add(constants.RefreshTokenTTL))

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_issued", slog.Int64("user_id", user.ID))

	return &loginResponse{AccessToken: accessToken, RefreshToken: refreshToken, User: &user}, nil
}

// refreshToken handles POST /auth/refresh-token.
//
// The refresh token is not rotated: the client keeps using the same one until
// it expires or is revoked.
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, ok := handler.store.ActiveRefreshSession(sec.HashToken(input.RefreshToken), handler.now())
	if input.RefreshToken == "" || !ok {
		respond.Error(writer, request, apperr.Unauthorized("Invalid or expired refresh token"))
		return
	}

	user, err := handler.store.User(userID)
	if err != nil {
		respond.Error(writer, request, apperr.Unauthorized("User not found"))
		return
	}

	accessToken, err := handler.tokens.GenerateAccessToken(user.ID, user.Email, user.Role, handler.cfg.AccessTokenTTL)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, map[string]string{"accessToken": accessToken})
}

// logout handles POST /auth/logout by revoking the given refresh token.
// It is idempotent.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = requestutil.DecodeJSON(writer, request, &input)

	if input.RefreshToken != "" {
		handler.store.RevokeRefreshSession(sec.HashToken(input.RefreshToken))
	}

	respond.NoContent(writer)
}

// forgotPassword handles POST /auth/forgot-password.
//
// It answers 204 whether or not the email exists. The sandbox sends no mail;
// the reset link is written to the log instead.
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Email("email", input.Email).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if found, ok := handler.store.AccountByEmail(input.Email); ok {
		token, err := sec.GenerateSecureToken(constants.ResetTokenLength)
		if err != nil {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}
		handler.store.SaveResetToken(sec.HashToken(token), found.User.ID, handler.now().Add(constants.ResetTokenTTL))

		ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "password_reset_issued",
			slog.Int64("user_id", found.User.ID),
			slog.String("reset_path", constants.PathResetPassword+token),
		)
	}

	respond.NoContent(writer)
}

// resetPassword handles POST /auth/reset-password/{token}.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		NewPassword string `json:"newPassword"`
	}
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.MinLen("newPassword", input.NewPassword, constants.MinPasswordLength).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, ok := handler.store.ConsumeResetToken(sec.HashToken(requestutil.Param(request, "token")), handler.now())
	if !ok {
		respond.Error(writer, request, apperr.Unprocessable("Reset link is invalid or has expired"))
		return
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	if err := handler.store.SetPassword(userID, hashedPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
