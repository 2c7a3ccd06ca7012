// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authstate lets independently running parts of the client agree on
whether a user is logged in.

# Lifecycle

A [Synchronizer] is created once by the composition root, initialized from
whatever session is persisted at that moment ([Synchronizer.Init]), and handed
by reference to every consumer. Consumers [Synchronizer.Subscribe] to be told
that "something changed" and then read [Synchronizer.Snapshot].

The persisted session is the ground truth: the cached [State] is always re-derived
from storage after a write, never the other way around.

# Subscriptions

Callbacks are kept in registration order and are not deduplicated: a callback
registered twice fires twice per notification pass. A registration lives until its
unsubscribe function is called; forgetting to call it keeps the callback for the
lifetime of the Synchronizer.
*/
package authstate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/taibuivan/edura/internal/session"
)

// State is the derived authentication view.
type State struct {
	IsAuthenticated bool
	User            *session.User
}

// anonymous is the unauthenticated state.
var anonymous = State{}

// subscription is one registration. Identity is the pointer, not the callback.
type subscription struct {
	callback func()
}

// Synchronizer is the authentication state store.
//
// # Concurrency
//
// All methods are safe for concurrent use. Callbacks run on the goroutine that
// called [Synchronizer.SetAuth], outside of any internal lock, so a callback may
// read the snapshot or (un)subscribe.
type Synchronizer struct {
	sessions *session.Manager
	logger   *slog.Logger

	mu            sync.Mutex
	subscriptions []*subscription
	state         State
}

// New constructs a Synchronizer. Call [Synchronizer.Init] before first use.
func New(sessions *session.Manager, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		sessions: sessions,
		logger:   logger,
	}
}

// Init derives the cached state from storage. It does not notify subscribers.
func (synchronizer *Synchronizer) Init(ctx context.Context) error {
	state, err := synchronizer.ComputeCurrentState(ctx)
	if err != nil {
		return err
	}

	synchronizer.mu.Lock()
	synchronizer.state = state
	synchronizer.mu.Unlock()

	synchronizer.logger.Debug("auth_state_initialized", slog.Bool("authenticated", state.IsAuthenticated))
	return nil
}

// Snapshot returns the cached state without touching storage.
func (synchronizer *Synchronizer) Snapshot() State {
	synchronizer.mu.Lock()
	defer synchronizer.mu.Unlock()
	return synchronizer.state
}

// Subscribe registers a callback invoked after every state change and returns the
// function that removes exactly this registration. Unsubscribing twice is a no-op.
//
// Subscribing never fires the callback for transitions that already happened.
func (synchronizer *Synchronizer) Subscribe(callback func()) (unsubscribe func()) {
	entry := &subscription{callback: callback}

	synchronizer.mu.Lock()
	synchronizer.subscriptions = append(synchronizer.subscriptions, entry)
	synchronizer.mu.Unlock()

	var once bool
	return func() {
		synchronizer.mu.Lock()
		defer synchronizer.mu.Unlock()

		if once {
			return
		}
		once = true

		for i, candidate := range synchronizer.subscriptions {
			if candidate == entry {
				synchronizer.subscriptions = append(synchronizer.subscriptions[:i:i], synchronizer.subscriptions[i+1:]...)
				return
			}
		}
	}
}

/*
SetAuth is the only writer of authentication state.

Description: When isAuthenticated is true and user is non-nil, the user record is
persisted; otherwise all three session keys are cleared. The cached state is then
re-derived from storage and every current subscriber is notified synchronously,
in registration order. N calls produce N notification passes.

Returns:
  - error: Storage failures. Subscribers are notified in either case, since the
    persisted state may have changed partially.
*/
func (synchronizer *Synchronizer) SetAuth(ctx context.Context, isAuthenticated bool, user *session.User) error {
	var writeErr error
	if isAuthenticated && user != nil {
		writeErr = synchronizer.sessions.SaveUser(ctx, user)
	} else {
		writeErr = synchronizer.sessions.Clear(ctx)
	}

	state, readErr := synchronizer.ComputeCurrentState(ctx)
	if readErr != nil {
		state = anonymous
	}

	synchronizer.mu.Lock()
	synchronizer.state = state
	synchronizer.mu.Unlock()

	synchronizer.logger.Info("auth_state_changed",
		slog.Bool("requested", isAuthenticated),
		slog.Bool("authenticated", state.IsAuthenticated),
	)

	synchronizer.notify()

	if writeErr != nil {
		return fmt.Errorf("auth_state_persist_failed: %w", writeErr)
	}
	if readErr != nil {
		return fmt.Errorf("auth_state_read_failed: %w", readErr)
	}
	return nil
}

// Dispatch is an alias of [Synchronizer.SetAuth] for store-style call sites.
func (synchronizer *Synchronizer) Dispatch(ctx context.Context, isAuthenticated bool, user *session.User) error {
	return synchronizer.SetAuth(ctx, isAuthenticated, user)
}

/*
ComputeCurrentState reads storage fresh (not the cache).

Description: A session counts as authenticated only when the access token looks
valid and both the refresh token and a parseable user record are present. A token
with a missing or corrupt user is an invalid session: it is wiped and reported as
not authenticated, never as "authenticated, user unknown".
*/
func (synchronizer *Synchronizer) ComputeCurrentState(ctx context.Context) (State, error) {
	current, err := synchronizer.sessions.Load(ctx)
	if err != nil {
		return anonymous, err
	}
	if current == nil {
		return anonymous, nil
	}
	return State{IsAuthenticated: true, User: current.User}, nil
}

// Refresh re-derives the cached state from storage and notifies subscribers.
// It is used when another process changed the shared session.
func (synchronizer *Synchronizer) Refresh(ctx context.Context) error {
	state, err := synchronizer.ComputeCurrentState(ctx)
	if err != nil {
		return err
	}

	synchronizer.mu.Lock()
	synchronizer.state = state
	synchronizer.mu.Unlock()

	synchronizer.notify()
	return nil
}

// Follow keeps the state in step with writes made by other processes through a
// shared store. It blocks until ctx is done.
func (synchronizer *Synchronizer) Follow(ctx context.Context, watcher session.Watcher) error {
	return watcher.Watch(ctx, func() {
		if err := synchronizer.Refresh(ctx); err != nil {
			synchronizer.logger.Warn("auth_state_follow_refresh_failed", slog.Any("error", err))
		}
	})
}

// notify runs one notification pass over a copy of the subscriber list.
func (synchronizer *Synchronizer) notify() {
	synchronizer.mu.Lock()
	pass := make([]*subscription, len(synchronizer.subscriptions))
	copy(pass, synchronizer.subscriptions)
	synchronizer.mu.Unlock()

	for index, entry := range pass {
		synchronizer.invoke(index, entry)
	}
}

// invoke runs a single callback, isolating a panic so that one broken observer
// cannot stop the rest of the pass.
func (synchronizer *Synchronizer) invoke(index int, entry *subscription) {
	defer func() {
		if recovered := recover(); recovered != nil {
			synchronizer.logger.Error("auth_subscriber_panicked",
				slog.Int("position", index),
				slog.Any("error", recovered),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	entry.callback()
}
