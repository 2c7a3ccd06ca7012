// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package transport is the HTTP layer between the client and the backend REST API.

# Session Guard

Every outbound request carries the stored access token as a bearer credential.
When any request comes back 401, the client makes exactly one silent refresh
attempt with the refresh token:

 1. Concurrent 401s share a single in-flight refresh (singleflight); all of them
    observe its outcome.
 2. On success the new access token replaces the old one; the refresh token is
    untouched. The rejected request is not replayed unless the client was built
    with [WithRetryAfterRefresh]; the caller gets a SESSION_REFRESHED error instead.
 3. On failure (no refresh token, expired, revoked) the session is cleared and the
    session-expired handler sends the user back to the unauthenticated entry point.

Requests marked [Request.SkipAuth] (login, register, refresh itself) are never
intercepted.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/ctxutil"
	"github.com/taibuivan/edura/internal/platform/metrics"
	"github.com/taibuivan/edura/internal/platform/respond"
	"github.com/taibuivan/edura/internal/session"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// refreshKey is the singleflight key shared by every refresh attempt.
const refreshKey = "refresh"

// errNoRefreshToken is the cause reported when there is nothing to refresh with.
var errNoRefreshToken = errors.New("no refresh token stored")

// # Request Definition

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is JSON-encoded when non-nil.
	Body any

	// RawBody is sent as-is with ContentType (e.g. multipart uploads). It takes
	// precedence over Body.
	RawBody     []byte
	ContentType string

	// SkipAuth sends no bearer token and disables 401 interception.
	SkipAuth bool
}

// # Client

// Client executes API requests with the session guard.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	sessions   *session.Manager
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metrics.Client

	refreshGroup      singleflight.Group
	retryAfterRefresh bool
	onSessionExpired  func(ctx context.Context)
}

// Option customises a [Client].
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) { client.httpClient.Timeout = timeout }
}

// WithRateLimit paces outbound requests with a token bucket.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(client *Client) { client.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst) }
}

// WithRetryAfterRefresh replays a rejected request once after a successful refresh.
func WithRetryAfterRefresh() Option {
	return func(client *Client) { client.retryAfterRefresh = true }
}

// WithSessionExpiredHandler registers the hook run after a failed refresh has
// cleared the session.
func WithSessionExpiredHandler(handler func(ctx context.Context)) Option {
	return func(client *Client) { client.onSessionExpired = handler }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(collectors *metrics.Client) Option {
	return func(client *Client) { client.metrics = collectors }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// New constructs a Client for the API rooted at baseURL.
func New(baseURL string, sessions *session.Manager, options ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("transport: invalid base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url must be http or https, got %q", baseURL)
	}

	client := &Client{
		baseURL:          parsed,
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		sessions:         sessions,
		limiter:          rate.NewLimiter(rate.Inf, 0),
		logger:           slog.Default(),
		onSessionExpired: func(context.Context) {},
	}

	for _, option := range options {
		option(client)
	}

	return client, nil
}

// BaseURL returns the API origin.
func (client *Client) BaseURL() *url.URL {
	copied := *client.baseURL
	return &copied
}

/*
Do executes request and decodes the success envelope's data into out.

Returns:
  - error: An [*apperr.AppError] for every failure: transport errors, backend
    error envelopes, SESSION_REFRESHED or SESSION_EXPIRED.
*/
func (client *Client) Do(ctx context.Context, request Request, out any) error {
	token := ""
	if !request.SkipAuth {
		stored, err := client.sessions.AccessToken(ctx)
		if err != nil {
			return apperr.Internal(fmt.Errorf("transport_read_token_failed: %w", err))
		}
		if session.LooksValid(stored) {
			token = stored
		}
	}

	status, body, err := client.send(ctx, request, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !request.SkipAuth {
		newToken, err := client.refresh(ctx, token)
		if err != nil {
			return err
		}

		if !client.retryAfterRefresh {
			return apperr.SessionRefreshed()
		}

		status, body, err = client.send(ctx, request, newToken)
		if err != nil {
			return err
		}
	}

	return decode(status, body, out)
}

// send performs one HTTP exchange and returns the status and body.
func (client *Client) send(ctx context.Context, request Request, token string) (int, []byte, error) {
	ctx, requestID := ctxutil.EnsureRequestID(ctx)

	if err := client.limiter.Wait(ctx); err != nil {
		return 0, nil, apperr.Transport(fmt.Errorf("transport_rate_wait_failed: %w", err))
	}

	httpRequest, err := client.build(ctx, request, token, requestID)
	if err != nil {
		return 0, nil, err
	}

	startTime := time.Now()
	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		client.metrics.ObserveRequest(request.Method, 0)
		client.logger.WarnContext(ctx, "api_request_failed",
			slog.String("method", request.Method),
			slog.String("path", request.Path),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return 0, nil, apperr.Transport(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		client.metrics.ObserveRequest(request.Method, 0)
		return 0, nil, apperr.Transport(fmt.Errorf("transport_read_body_failed: %w", err))
	}

	client.metrics.ObserveRequest(request.Method, response.StatusCode)
	client.logger.DebugContext(ctx, "api_request_finished",
		slog.String("method", request.Method),
		slog.String("path", request.Path),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
		slog.String("request_id", requestID),
	)

	return response.StatusCode, body, nil
}

// build assembles the *http.Request.
func (client *Client) build(ctx context.Context, request Request, token, requestID string) (*http.Request, error) {
	target := client.baseURL.JoinPath(request.Path)
	if len(request.Query) > 0 {
		target.RawQuery = request.Query.Encode()
	}

	var reader io.Reader
	contentType := ""
	switch {
	case request.RawBody != nil:
		reader = bytes.NewReader(request.RawBody)
		contentType = request.ContentType
	case request.Body != nil:
		encoded, err := json.Marshal(request.Body)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("transport_encode_body_failed: %w", err))
		}
		reader = bytes.NewReader(encoded)
		contentType = constants.ContentJSON
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, target.String(), reader)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("transport_build_request_failed: %w", err))
	}

	httpRequest.Header.Set(constants.HeaderAccept, constants.ContentJSON)
	httpRequest.Header.Set(constants.HeaderXRequestID, requestID)
	if contentType != "" {
		httpRequest.Header.Set(constants.HeaderContentType, contentType)
	}
	if token != "" {
		httpRequest.Header.Set(constants.HeaderAuthorization, constants.BearerScheme+" "+token)
	}

	return httpRequest, nil
}

// decode maps a response onto out or onto an [*apperr.AppError].
func decode(status int, body []byte, out any) error {
	if status >= http.StatusBadRequest {
		var envelope respond.ErrorEnvelope
		if len(body) > 0 {
			_ = json.Unmarshal(body, &envelope)
		}
		return apperr.FromEnvelope(status, envelope.Code, envelope.Error, envelope.Details)
	}

	if out == nil || status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	envelope := respond.SuccessEnvelope{Data: out}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apperr.Internal(fmt.Errorf("transport_decode_response_failed: %w", err))
	}
	return nil
}
