// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, header names, persisted storage keys
and backend endpoint paths that are shared between the client and the sandbox.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the sandbox HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session Storage: The three persisted session keys.
  - Endpoints: The backend REST contract paths.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "edura"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "edura.dev"

	// RefreshTokenLength is the byte length of the random opaque refresh token.
	RefreshTokenLength = 32

	// RefreshTokenTTL is how long an issued refresh token stays valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// ResetTokenTTL is the duration a password reset token remains valid.
	ResetTokenTTL = 1 * time.Hour

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
)

// # Session Storage Keys

const (
	StorageKeyAccessToken  = "accessToken"
	StorageKeyRefreshToken = "refreshToken"
	StorageKeyUser         = "user"

	// RedisPrefixSession namespaces persisted sessions per profile.
	RedisPrefixSession = "edura:session:"

	// RedisSuffixEvents names the per-profile change channel.
	RedisSuffixEvents = "events"
)

// SessionKeys lists every persisted session key. Clearing a session deletes all of them.
var SessionKeys = []string{StorageKeyAccessToken, StorageKeyRefreshToken, StorageKeyUser}

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"

	BearerScheme = "Bearer"
	ContentJSON  = "application/json"
)

// # Backend Endpoints

const (
	PathRegister       = "/auth/register"
	PathLogin          = "/auth/login"
	PathGoogleLogin    = "/auth/google-login"
	PathRefreshToken   = "/auth/refresh-token"
	PathLogout         = "/auth/logout"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password/"

	PathCourses     = "/courses"
	PathCategories  = "/categories"
	PathLessons     = "/lessons"
	PathCart        = "/cart"
	PathCartItems   = "/cart/items"
	PathEnrollments = "/enrollments"
	PathPayments    = "/payments"
	PathUsers       = "/users"
	PathUploads     = "/uploads"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
)
