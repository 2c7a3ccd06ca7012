// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/edura/internal/cart"
	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/payment"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/session"
)

// account is a user with its credentials.
type account struct {
	User         session.User
	PasswordHash string
	CreatedAt    time.Time
}

// refreshSession tracks one issued refresh token by its hash.
type refreshSession struct {
	UserID    int64
	ExpiresAt time.Time
	IsRevoked bool
}

// resetToken tracks one password reset link by its hash.
type resetToken struct {
	UserID    int64
	ExpiresAt time.Time
}

// upload is an in-memory file served under /uploads.
type upload struct {
	ContentType string
	Data        []byte
}

// Store is the sandbox's in-memory state.
//
// # Concurrency
//
// A single mutex guards every map. Methods return copies, never pointers into
// the maps, so callers cannot mutate state without holding the lock.
type Store struct {
	mu     sync.Mutex
	nextID int64

	accounts        map[int64]*account
	accountsByEmail map[string]int64
	refreshSessions map[string]refreshSession
	resetTokens     map[string]resetToken

	categories  map[int64]catalog.Category
	courses     map[int64]catalog.Course
	lessons     map[int64]catalog.Lesson
	carts       map[int64][]cart.Item
	enrollments []catalog.Enrollment
	payments    map[int64]payment.Payment
	uploads     map[string]upload
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:        map[int64]*account{},
		accountsByEmail: map[string]int64{},
		refreshSessions: map[string]refreshSession{},
		resetTokens:     map[string]resetToken{},
		categories:      map[int64]catalog.Category{},
		courses:         map[int64]catalog.Course{},
		lessons:         map[int64]catalog.Lesson{},
		carts:           map[int64][]cart.Item{},
		payments:        map[int64]payment.Payment{},
		uploads:         map[string]upload{},
	}
}

// id issues the next identifier. The caller must hold the lock.
func (store *Store) id() int64 {
	store.nextID++
	return store.nextID
}

// sortedValues returns map values ordered by id.
func sortedValues[T any](values map[int64]T) []T {
	ids := make([]int64, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, values[id])
	}
	return out
}

// # Accounts

// CreateAccount registers a user. Emails are unique, case-insensitively.
func (store *Store) CreateAccount(user session.User, passwordHash string) (session.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := store.accountsByEmail[email]; taken {
		return session.User{}, apperr.Conflict("Email is already registered")
	}

	user.ID = store.id()
	user.Email = email
	store.accounts[user.ID] = &account{User: user, PasswordHash: passwordHash, CreatedAt: time.Now()}
	store.accountsByEmail[email] = user.ID

	return user, nil
}

// AccountByEmail finds an account for login.
func (store *Store) AccountByEmail(email string) (account, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id, ok := store.accountsByEmail[strings.ToLower(email)]
	if !ok {
		return account{}, false
	}
	return *store.accounts[id], true
}

// User returns a user profile.
func (store *Store) User(id int64) (session.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	found, ok := store.accounts[id]
	if !ok {
		return session.User{}, apperr.NotFound("User")
	}
	return found.User, nil
}

// Users lists every user profile.
func (store *Store) Users() []session.User {
	store.mu.Lock()
	defer store.mu.Unlock()

	users := make([]session.User, 0, len(store.accounts))
	for _, found := range sortedValues(store.accounts) {
		users = append(users, found.User)
	}
	return users
}

// UpdateUser applies mutate to a profile and returns the result.
func (store *Store) UpdateUser(id int64, mutate func(*session.User) error) (session.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	found, ok := store.accounts[id]
	if !ok {
		return session.User{}, apperr.NotFound("User")
	}

	updated := found.User
	if err := mutate(&updated); err != nil {
		return session.User{}, err
	}

	updated.Email = strings.ToLower(updated.Email)
	if updated.Email != found.User.Email {
		if _, taken := store.accountsByEmail[updated.Email]; taken {
			return session.User{}, apperr.Conflict("Email is already registered")
		}
		delete(store.accountsByEmail, found.User.Email)
		store.accountsByEmail[updated.Email] = id
	}

	found.User = updated
	return updated, nil
}

// SetPassword replaces a password hash and revokes every refresh session of the user.
func (store *Store) SetPassword(userID int64, passwordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	found, ok := store.accounts[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	found.PasswordHash = passwordHash

	for hash, tracked := range store.refreshSessions {
		if tracked.UserID == userID {
			tracked.IsRevoked = true
			store.refreshSessions[hash] = tracked
		}
	}
	return nil
}

// # Refresh Sessions

// SaveRefreshSession records an issued refresh token hash.
func (store *Store) SaveRefreshSession(tokenHash string, userID int64, expiresAt time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.refreshSessions[tokenHash] = refreshSession{UserID: userID, ExpiresAt: expiresAt}
}

// ActiveRefreshSession returns the owner of a live, unrevoked refresh token.
func (store *Store) ActiveRefreshSession(tokenHash string, now time.Time) (int64, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	tracked, ok := store.refreshSessions[tokenHash]
	if !ok || tracked.IsRevoked || now.After(tracked.ExpiresAt) {
		return 0, false
	}
	return tracked.UserID, true
}

// RevokeRefreshSession invalidates a refresh token. Unknown tokens are ignored.
func (store *Store) RevokeRefreshSession(tokenHash string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if tracked, ok := store.refreshSessions[tokenHash]; ok {
		tracked.IsRevoked = true
		store.refreshSessions[tokenHash] = tracked
	}
}

// # Reset Tokens

// SaveResetToken records a password reset token hash.
func (store *Store) SaveResetToken(tokenHash string, userID int64, expiresAt time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.resetTokens[tokenHash] = resetToken{UserID: userID, ExpiresAt: expiresAt}
}

// ConsumeResetToken returns the owner of a live reset token and deletes it.
func (store *Store) ConsumeResetToken(tokenHash string, now time.Time) (int64, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	tracked, ok := store.resetTokens[tokenHash]
	delete(store.resetTokens, tokenHash)
	if !ok || now.After(tracked.ExpiresAt) {
		return 0, false
	}
	return tracked.UserID, true
}

// # Uploads

// SaveUpload keeps a file for serving under /uploads.
func (store *Store) SaveUpload(path, contentType string, data []byte) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.uploads[path] = upload{ContentType: contentType, Data: data}
}

// Upload returns a stored file.
func (store *Store) Upload(path string) (upload, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	found, ok := store.uploads[path]
	return found, ok
}
