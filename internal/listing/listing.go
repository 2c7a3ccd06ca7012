// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package listing implements the state machine behind every list screen.

# State Machine

	Idle ──Load──▶ Loading ──▶ Loaded ◀──SetFilter──┐
	                  │           └──────────────────┘
	                  └──────▶ Errored

Every Load takes a sequence number. A result is applied only while its sequence
is still the latest, so when loads overlap the last one issued wins regardless
of the order responses arrive in. Starting a new load cancels the context of the
one it supersedes.

Filter changes never fetch: the visible subset is recomputed from the full list
that was already loaded.

Close aborts in-flight loads; nothing is applied after it.
*/
package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/taibuivan/edura/pkg/slice"
)

// State is the lifecycle position of a [View].
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateErrored State = "errored"
)

var (
	// ErrSuperseded is returned by Load when a newer load replaced it.
	ErrSuperseded = errors.New("listing: load superseded by a newer one")

	// ErrClosed is returned by Load after the view was closed.
	ErrClosed = errors.New("listing: view closed")
)

// Fetcher retrieves the full, unfiltered list.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Snapshot is a consistent copy of a view's state.
type Snapshot[T any] struct {
	State State
	// Items is the visible (filtered) subset.
	Items []T
	// All is the full list from the last applied load.
	All []T
	Err error
	// Empty is the distinct "no results" state: loaded, but nothing visible.
	Empty bool
}

// View holds one list screen's data.
type View[T any] struct {
	mu sync.Mutex

	rootCtx    context.Context
	rootCancel context.CancelFunc

	seq           uint64
	cancelCurrent context.CancelFunc

	state     State
	all       []T
	items     []T
	err       error
	predicate func(T) bool
	onChange  func(Snapshot[T])
	closed    bool
}

// New creates an idle view.
func New[T any]() *View[T] {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	return &View[T]{
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		state:      StateIdle,
	}
}

// OnChange registers the callback run after every applied transition. It runs
// outside the view's lock and may call Snapshot.
func (view *View[T]) OnChange(callback func(Snapshot[T])) {
	view.mu.Lock()
	defer view.mu.Unlock()
	view.onChange = callback
}

/*
Load fetches the full list and applies it if no newer load started meanwhile.

Returns:
  - error: The fetch error (the view is then Errored), [ErrSuperseded] when the
    result was discarded, or [ErrClosed]
*/
func (view *View[T]) Load(ctx context.Context, fetch Fetcher[T]) error {
	view.mu.Lock()
	if view.closed {
		view.mu.Unlock()
		return ErrClosed
	}

	if view.cancelCurrent != nil {
		view.cancelCurrent()
	}

	view.seq++
	seq := view.seq

	loadCtx, cancel := mergeCancel(ctx, view.rootCtx)
	view.cancelCurrent = cancel
	view.state = StateLoading
	view.err = nil
	snapshot, callback := view.snapshotLocked(), view.onChange
	view.mu.Unlock()

	notify(callback, snapshot)

	items, err := fetch(loadCtx)
	cancel()

	view.mu.Lock()
	if view.closed {
		view.mu.Unlock()
		return ErrClosed
	}
	if seq != view.seq {
		view.mu.Unlock()
		return ErrSuperseded
	}

	view.cancelCurrent = nil
	if err != nil {
		view.state = StateErrored
		view.err = err
	} else {
		view.state = StateLoaded
		view.all = items
		view.items = view.visibleLocked()
	}
	snapshot, callback = view.snapshotLocked(), view.onChange
	view.mu.Unlock()

	notify(callback, snapshot)
	return err
}

// SetFilter replaces the predicate and recomputes the visible subset without
// fetching. A nil predicate shows everything.
func (view *View[T]) SetFilter(predicate func(T) bool) {
	view.mu.Lock()
	view.predicate = predicate
	if view.state != StateLoaded || view.closed {
		view.mu.Unlock()
		return
	}

	view.items = view.visibleLocked()
	snapshot, callback := view.snapshotLocked(), view.onChange
	view.mu.Unlock()

	notify(callback, snapshot)
}

// Snapshot returns a copy of the current state.
func (view *View[T]) Snapshot() Snapshot[T] {
	view.mu.Lock()
	defer view.mu.Unlock()
	return view.snapshotLocked()
}

// Close aborts in-flight loads. Results that arrive afterwards are dropped.
func (view *View[T]) Close() {
	view.mu.Lock()
	defer view.mu.Unlock()

	view.closed = true
	view.rootCancel()
}

// visibleLocked applies the predicate to the full list.
func (view *View[T]) visibleLocked() []T {
	if view.predicate == nil {
		return append([]T(nil), view.all...)
	}
	return slice.Filter(view.all, view.predicate)
}

// snapshotLocked copies the state. The caller must hold the lock.
func (view *View[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		State: view.state,
		Items: append([]T(nil), view.items...),
		All:   append([]T(nil), view.all...),
		Err:   view.err,
		Empty: view.state == StateLoaded && len(view.items) == 0,
	}
}

// notify runs the change callback if one is registered.
func notify[T any](callback func(Snapshot[T]), snapshot Snapshot[T]) {
	if callback != nil {
		callback(snapshot)
	}
}

// mergeCancel derives a context from ctx that is also cancelled with parent.
func mergeCancel(ctx, parent context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(parent, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
