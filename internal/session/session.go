// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the persisted authentication state of the client.

# Contract

A session is three values kept in a durable key-value [Store]:

  - accessToken: short-lived bearer credential.
  - refreshToken: longer-lived credential used to mint new access tokens.
  - user: the JSON-encoded [User] record.

They are all present or all absent. The three keys are written separately, so a
crash or a concurrent clear can leave partial state behind; [Manager.Load] is
therefore the single read path and treats anything partial or unparsable as "no
session", wiping what is left.
*/
package session

import (
	"strings"

	"github.com/taibuivan/edura/internal/platform/sec"
)

// # Domain Entities

// User is the authenticated principal as returned by the backend.
type User struct {
	ID       int64        `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"full_name"`
	Role     sec.UserRole `json:"role"`
	Avatar   string       `json:"avatar,omitempty"`
}

// Session is a complete persisted session.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// Complete reports whether all three parts are present.
func (s *Session) Complete() bool {
	return s != nil && LooksValid(s.AccessToken) && s.RefreshToken != "" && s.User != nil
}

// LooksValid reports whether a stored access token is usable at all: non-empty
// and free of whitespace. Expiry is the backend's business; an expired token is
// still sent and answered with 401, which triggers a refresh.
func LooksValid(token string) bool {
	return token != "" && !strings.ContainsAny(token, " \t\r\n")
}
