// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSession() *session.Session {
	return &session.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         &session.User{ID: 1, Email: "tai@edura.dev", FullName: "Tai", Role: sec.RoleStudent},
	}
}

/*
TestManager_SaveLoad verifies the happy path.
*/
func TestManager_SaveLoad(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(session.NewMemoryStore(), discardLogger())

	require.NoError(t, manager.Save(ctx, sampleSession()))

	loaded, err := manager.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access-1", loaded.AccessToken)
	assert.Equal(t, "refresh-1", loaded.RefreshToken)
	assert.Equal(t, "Tai", loaded.User.FullName)
}

/*
TestManager_SaveRejectsIncomplete verifies that partial sessions are never written.
*/
func TestManager_SaveRejectsIncomplete(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, discardLogger())

	err := manager.Save(context.Background(), &session.Session{AccessToken: "a"})
	require.Error(t, err)
	assert.Zero(t, store.Len())
}

/*
TestManager_LoadEmpty returns nil without writes.
*/
func TestManager_LoadEmpty(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), discardLogger())

	loaded, err := manager.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

/*
TestManager_LoadPartialClears covers every partial/corrupt shape.
*/
func TestManager_LoadPartialClears(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"token_without_user", map[string]string{
			constants.StorageKeyAccessToken:  "a",
			constants.StorageKeyRefreshToken: "r",
		}},
		{"token_with_corrupt_user", map[string]string{
			constants.StorageKeyAccessToken:  "a",
			constants.StorageKeyRefreshToken: "r",
			constants.StorageKeyUser:         "{not json",
		}},
		{"token_with_empty_user", map[string]string{
			constants.StorageKeyAccessToken:  "a",
			constants.StorageKeyRefreshToken: "r",
			constants.StorageKeyUser:         "{}",
		}},
		{"user_without_tokens", map[string]string{
			constants.StorageKeyUser: `{"id":1,"email":"a@b.c"}`,
		}},
		{"missing_refresh_token", map[string]string{
			constants.StorageKeyAccessToken: "a",
			constants.StorageKeyUser:        `{"id":1,"email":"a@b.c"}`,
		}},
		{"whitespace_token", map[string]string{
			constants.StorageKeyAccessToken:  "not a token",
			constants.StorageKeyRefreshToken: "r",
			constants.StorageKeyUser:         `{"id":1,"email":"a@b.c"}`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := session.NewMemoryStore()
			for key, value := range tt.values {
				require.NoError(t, store.Set(ctx, key, value))
			}
			manager := session.NewManager(store, discardLogger())

			loaded, err := manager.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, loaded)
			assert.Zero(t, store.Len())

			// Idempotent: a second read changes nothing further.
			loaded, err = manager.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, loaded)
			assert.Zero(t, store.Len())
		})
	}
}

/*
TestManager_UpdateAccessToken keeps the refresh token untouched.
*/
func TestManager_UpdateAccessToken(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(session.NewMemoryStore(), discardLogger())
	require.NoError(t, manager.Save(ctx, sampleSession()))

	require.NoError(t, manager.UpdateAccessToken(ctx, "access-2"))

	access, err := manager.AccessToken(ctx)
	require.NoError(t, err)
	refresh, err := manager.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", access)
	assert.Equal(t, "refresh-1", refresh)
}

/*
TestManager_Clear removes all three keys.
*/
func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	manager := session.NewManager(store, discardLogger())
	require.NoError(t, manager.Save(ctx, sampleSession()))

	require.NoError(t, manager.Clear(ctx))
	for _, key := range constants.SessionKeys {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}
