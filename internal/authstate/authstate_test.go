// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authstate_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/authstate"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var student = &session.User{ID: 9, Email: "learner@edura.dev", FullName: "Learner", Role: sec.RoleStudent}

// newSynchronizer returns a synchronizer over a memory store that already holds tokens,
// the way a successful login leaves it before SetAuth is called.
func newSynchronizer(t *testing.T) (*authstate.Synchronizer, *session.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, constants.StorageKeyAccessToken, "access"))
	require.NoError(t, store.Set(ctx, constants.StorageKeyRefreshToken, "refresh"))

	synchronizer := authstate.New(session.NewManager(store, discardLogger()), discardLogger())
	return synchronizer, store
}

/*
TestSetAuth_SubscribeIsNotRetroactive verifies that a subscriber only hears later transitions.
*/
func TestSetAuth_SubscribeIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	synchronizer, _ := newSynchronizer(t)

	require.NoError(t, synchronizer.SetAuth(ctx, true, student))
	assert.True(t, synchronizer.Snapshot().IsAuthenticated)

	calls := 0
	synchronizer.Subscribe(func() { calls++ })
	assert.Zero(t, calls)

	require.NoError(t, synchronizer.SetAuth(ctx, false, nil))
	assert.Equal(t, 1, calls)
	assert.False(t, synchronizer.Snapshot().IsAuthenticated)
}

/*
TestSetAuth_FalseClearsStorage verifies that logout removes every persisted key.
*/
func TestSetAuth_FalseClearsStorage(t *testing.T) {
	ctx := context.Background()
	synchronizer, store := newSynchronizer(t)
	require.NoError(t, synchronizer.SetAuth(ctx, true, student))

	require.NoError(t, synchronizer.SetAuth(ctx, false, nil))

	for _, key := range constants.SessionKeys {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

/*
TestSetAuth_TrueWithNilUserClears follows the "otherwise clear" branch.
*/
func TestSetAuth_TrueWithNilUserClears(t *testing.T) {
	ctx := context.Background()
	synchronizer, store := newSynchronizer(t)

	require.NoError(t, synchronizer.SetAuth(ctx, true, nil))
	assert.False(t, synchronizer.Snapshot().IsAuthenticated)
	assert.Zero(t, store.Len())
}

/*
TestSetAuth_NoDebounce verifies one full pass per call, in registration order,
including duplicate registrations.
*/
func TestSetAuth_NoDebounce(t *testing.T) {
	ctx := context.Background()
	synchronizer, _ := newSynchronizer(t)

	var order []string
	first := func() { order = append(order, "first") }
	synchronizer.Subscribe(first)
	synchronizer.Subscribe(func() { order = append(order, "second") })
	synchronizer.Subscribe(first)

	require.NoError(t, synchronizer.SetAuth(ctx, true, student))
	require.NoError(t, synchronizer.SetAuth(ctx, true, student))

	assert.Equal(t, []string{"first", "second", "first", "first", "second", "first"}, order)
}

/*
TestDispatch_IsSetAuth verifies the alias persists and notifies like SetAuth.
*/
func TestDispatch_IsSetAuth(t *testing.T) {
	ctx := context.Background()
	synchronizer, store := newSynchronizer(t)

	var calls atomic.Int32
	defer synchronizer.Subscribe(func() { calls.Add(1) })()

	require.NoError(t, synchronizer.Dispatch(ctx, true, student))
	assert.Equal(t, student.Email, synchronizer.Snapshot().User.Email)

	require.NoError(t, synchronizer.Dispatch(ctx, false, nil))
	assert.False(t, synchronizer.Snapshot().IsAuthenticated)
	assert.Equal(t, int32(2), calls.Load())

	_, ok, err := store.Get(ctx, constants.StorageKeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

/*
TestSubscribe_UnsubscribeRemovesExactlyOne verifies registration identity.
*/
func TestSubscribe_UnsubscribeRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	synchronizer, _ := newSynchronizer(t)

	calls := 0
	callback := func() { calls++ }
	unsubscribeFirst := synchronizer.Subscribe(callback)
	synchronizer.Subscribe(callback)

	unsubscribeFirst()
	unsubscribeFirst()

	require.NoError(t, synchronizer.SetAuth(ctx, false, nil))
	assert.Equal(t, 1, calls)
}

/*
TestNotify_IsolatesPanickingSubscriber keeps the pass going after a panic.
*/
func TestNotify_IsolatesPanickingSubscriber(t *testing.T) {
	ctx := context.Background()
	synchronizer, _ := newSynchronizer(t)

	reached := false
	synchronizer.Subscribe(func() { panic("broken view") })
	synchronizer.Subscribe(func() { reached = true })

	assert.NotPanics(t, func() {
		require.NoError(t, synchronizer.SetAuth(ctx, false, nil))
	})
	assert.True(t, reached)
}

/*
TestNotify_SubscriberSeesNewState verifies persistence happens before notification.
*/
func TestNotify_SubscriberSeesNewState(t *testing.T) {
	ctx := context.Background()
	synchronizer, _ := newSynchronizer(t)

	var seen authstate.State
	synchronizer.Subscribe(func() { seen = synchronizer.Snapshot() })

	require.NoError(t, synchronizer.SetAuth(ctx, true, student))
	assert.True(t, seen.IsAuthenticated)
	require.NotNil(t, seen.User)
	assert.Equal(t, "Learner", seen.User.FullName)
}

/*
TestComputeCurrentState_CorruptUser wipes the session and reports anonymous, idempotently.
*/
func TestComputeCurrentState_CorruptUser(t *testing.T) {
	ctx := context.Background()
	synchronizer, store := newSynchronizer(t)
	require.NoError(t, store.Set(ctx, constants.StorageKeyUser, "{broken"))

	state, err := synchronizer.ComputeCurrentState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.Zero(t, store.Len())

	state, err = synchronizer.ComputeCurrentState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)
	assert.Zero(t, store.Len())
}

/*
TestInit_ReadsPersistedSession derives the cache at startup without notifying.
*/
func TestInit_ReadsPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	manager := session.NewManager(store, discardLogger())
	require.NoError(t, manager.Save(ctx, &session.Session{AccessToken: "a", RefreshToken: "r", User: student}))

	synchronizer := authstate.New(manager, discardLogger())
	calls := 0
	synchronizer.Subscribe(func() { calls++ })

	require.NoError(t, synchronizer.Init(ctx))
	assert.True(t, synchronizer.Snapshot().IsAuthenticated)
	assert.Zero(t, calls)
}

/*
TestFollow_PropagatesExternalLogout mirrors a logout performed by another process.
*/
func TestFollow_PropagatesExternalLogout(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	localStore := session.NewRedisStore(client, "shared", discardLogger())
	otherStore := session.NewRedisStore(client, "shared", discardLogger())

	localManager := session.NewManager(localStore, discardLogger())
	require.NoError(t, localManager.Save(ctx, &session.Session{AccessToken: "a", RefreshToken: "r", User: student}))

	synchronizer := authstate.New(localManager, discardLogger())
	require.NoError(t, synchronizer.Init(ctx))
	require.True(t, synchronizer.Snapshot().IsAuthenticated)

	var notified atomic.Int32
	synchronizer.Subscribe(func() { notified.Add(1) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = synchronizer.Follow(ctx, localStore)
	}()

	otherManager := session.NewManager(otherStore, discardLogger())
	assert.Eventually(t, func() bool {
		_ = otherManager.Clear(context.Background())
		return notified.Load() > 0
	}, 2*time.Second, 20*time.Millisecond)

	assert.False(t, synchronizer.Snapshot().IsAuthenticated)

	cancel()
	<-done
}
