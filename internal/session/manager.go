// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taibuivan/edura/internal/platform/constants"
)

// Manager applies the session rules on top of a [Store].
//
// # Concurrency
//
// Manager adds no locking of its own. [Manager.Save] and [Manager.Clear] each map
// to one atomic store call, so a reader in another process never observes a
// half-written login. The all-or-nothing rule is still enforced on read by
// [Manager.Load] for state written by other means.
type Manager struct {
	store  Store
	logger *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Store returns the underlying store.
func (manager *Manager) Store() Store { return manager.store }

/*
Save persists a complete session.

Returns:
  - error: Storage failures, or an error if the session is incomplete
*/
func (manager *Manager) Save(ctx context.Context, session *Session) error {
	if !session.Complete() {
		return fmt.Errorf("session_save_rejected: session is incomplete")
	}

	encoded, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("session_user_encode_failed: %w", err)
	}

	return manager.store.SetMany(ctx, map[string]string{
		constants.StorageKeyAccessToken:  session.AccessToken,
		constants.StorageKeyRefreshToken: session.RefreshToken,
		constants.StorageKeyUser:         string(encoded),
	})
}

// SaveUser persists the user record only.
func (manager *Manager) SaveUser(ctx context.Context, user *User) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session_user_encode_failed: %w", err)
	}
	return manager.store.Set(ctx, constants.StorageKeyUser, string(encoded))
}

// UpdateAccessToken replaces the access token and leaves the rest untouched.
func (manager *Manager) UpdateAccessToken(ctx context.Context, token string) error {
	return manager.store.Set(ctx, constants.StorageKeyAccessToken, token)
}

// AccessToken returns the stored access token, or "" when absent.
func (manager *Manager) AccessToken(ctx context.Context) (string, error) {
	token, _, err := manager.store.Get(ctx, constants.StorageKeyAccessToken)
	return token, err
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (manager *Manager) RefreshToken(ctx context.Context) (string, error) {
	token, _, err := manager.store.Get(ctx, constants.StorageKeyRefreshToken)
	return token, err
}

// Clear deletes all three session keys.
func (manager *Manager) Clear(ctx context.Context) error {
	return manager.store.Delete(ctx, constants.SessionKeys...)
}

/*
Load reads the session fresh from the store.

Description: Returns (nil, nil) when nothing is stored. When the stored state is
partial (some keys missing) or corrupt (the user record does not parse or the
token does not look valid), all three keys are cleared and (nil, nil) is returned.
Repeated calls on a cleared store change nothing further.

Returns:
  - *Session: The complete session, or nil
  - error: Storage failures only; parse failures are recovered locally
*/
func (manager *Manager) Load(ctx context.Context) (*Session, error) {
	accessToken, hasAccess, err := manager.store.Get(ctx, constants.StorageKeyAccessToken)
	if err != nil {
		return nil, err
	}
	refreshToken, hasRefresh, err := manager.store.Get(ctx, constants.StorageKeyRefreshToken)
	if err != nil {
		return nil, err
	}
	rawUser, hasUser, err := manager.store.Get(ctx, constants.StorageKeyUser)
	if err != nil {
		return nil, err
	}

	// Nothing persisted: a clean anonymous state.
	if !hasAccess && !hasRefresh && !hasUser {
		return nil, nil
	}

	session := &Session{AccessToken: accessToken, RefreshToken: refreshToken}

	if hasUser {
		var user User
		if jsonErr := json.Unmarshal([]byte(rawUser), &user); jsonErr == nil && user.ID != 0 {
			session.User = &user
		}
	}

	if session.Complete() {
		return session, nil
	}

	manager.logger.Warn("session_partial_state_cleared",
		slog.Bool("has_access_token", hasAccess),
		slog.Bool("has_refresh_token", hasRefresh),
		slog.Bool("has_user", hasUser),
		slog.Bool("user_parsed", session.User != nil),
	)

	if err := manager.Clear(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}
