// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/metrics"
	"github.com/taibuivan/edura/internal/platform/respond"
	"github.com/taibuivan/edura/internal/session"
)

// refreshRequest is the body of POST /auth/refresh-token.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshResponse is the data of a successful refresh.
type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh exchanges the stored refresh token for a new access token on demand.
// It shares the in-flight attempt with any concurrent 401 handling.
func (client *Client) Refresh(ctx context.Context) (string, error) {
	current, err := client.sessions.AccessToken(ctx)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("transport_read_token_failed: %w", err))
	}
	return client.refresh(ctx, current)
}

/*
refresh obtains a new access token after rejectedToken was refused.

Concurrent callers share one attempt. If the stored token already differs from
the rejected one, another request (or another process) refreshed in the meantime
and that token is reused without calling the backend.

Returns:
  - string: The access token to use from now on
  - error: SESSION_EXPIRED after the session was cleared, or a transport error
    when the backend could not be reached (the session is kept in that case)
*/
func (client *Client) refresh(ctx context.Context, rejectedToken string) (string, error) {
	// The attempt outlives a cancelled waiter; the other waiters still need it.
	sharedCtx := context.WithoutCancel(ctx)

	result, err, _ := client.refreshGroup.Do(refreshKey, func() (any, error) {
		return client.doRefresh(sharedCtx, rejectedToken)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// doRefresh runs one refresh attempt. It is only ever called through the singleflight group.
func (client *Client) doRefresh(ctx context.Context, rejectedToken string) (string, error) {
	current, err := client.sessions.AccessToken(ctx)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("transport_read_token_failed: %w", err))
	}
	if session.LooksValid(current) && current != rejectedToken {
		client.metrics.ObserveRefresh(metrics.RefreshSkipped)
		return current, nil
	}

	refreshToken, err := client.sessions.RefreshToken(ctx)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("transport_read_refresh_token_failed: %w", err))
	}
	if !session.LooksValid(refreshToken) {
		return "", client.expire(ctx, errNoRefreshToken)
	}

	status, body, err := client.send(ctx, Request{
		Method:   http.MethodPost,
		Path:     constants.PathRefreshToken,
		Body:     refreshRequest{RefreshToken: refreshToken},
		SkipAuth: true,
	}, "")
	if err != nil {
		client.metrics.ObserveRefresh(metrics.RefreshFailure)
		return "", err
	}

	if status != http.StatusOK {
		return "", client.expire(ctx, decode(status, body, nil))
	}

	var payload refreshResponse
	envelope := respond.SuccessEnvelope{Data: &payload}
	if err := json.Unmarshal(body, &envelope); err != nil || !session.LooksValid(payload.AccessToken) {
		return "", client.expire(ctx, errors.New("refresh response carried no usable access token"))
	}

	if err := client.sessions.UpdateAccessToken(ctx, payload.AccessToken); err != nil {
		return "", apperr.Internal(fmt.Errorf("transport_store_token_failed: %w", err))
	}

	client.metrics.ObserveRefresh(metrics.RefreshSuccess)
	client.logger.InfoContext(ctx, "access_token_refreshed")

	return payload.AccessToken, nil
}

// expire clears the session, fires the expiry hook and returns SESSION_EXPIRED.
func (client *Client) expire(ctx context.Context, cause error) error {
	client.metrics.ObserveRefresh(metrics.RefreshFailure)
	client.metrics.ObserveExpiration()

	if err := client.sessions.Clear(ctx); err != nil {
		client.logger.ErrorContext(ctx, "session_clear_failed", slog.Any("error", err))
	}

	client.logger.WarnContext(ctx, "session_expired", slog.Any("cause", cause))
	client.onSessionExpired(ctx)

	return apperr.SessionExpired(cause)
}
