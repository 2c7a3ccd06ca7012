// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/platform/apperr"
)

/*
TestAppError_Kind verifies the taxonomy mapping used by views.
*/
func TestAppError_Kind(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.AppError
		want apperr.Kind
	}{
		{"not_found", apperr.NotFound("Course"), apperr.KindNotFound},
		{"unauthorized", apperr.Unauthorized("nope"), apperr.KindUnauthorized},
		{"forbidden", apperr.Forbidden("admins only"), apperr.KindForbidden},
		{"validation", apperr.ValidationError("bad"), apperr.KindValidation},
		{"already_in_cart", apperr.BusinessConflict(apperr.CodeAlreadyInCart, "in cart"), apperr.KindConflict},
		{"already_enrolled", apperr.BusinessConflict(apperr.CodeAlreadyEnrolled, "owned"), apperr.KindConflict},
		{"transport", apperr.Transport(errors.New("dial tcp")), apperr.KindTransport},
		{"session_expired", apperr.SessionExpired(nil), apperr.KindUnauthorized},
		{"rate_limited", apperr.RateLimited(3), apperr.KindRateLimited},
		{"internal", apperr.Internal(errors.New("boom")), apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Kind())
		})
	}
}

/*
TestFromEnvelope checks that bare envelopes still get a code derived from the status.
*/
func TestFromEnvelope(t *testing.T) {
	ae := apperr.FromEnvelope(http.StatusNotFound, "", "", nil)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
	assert.Equal(t, "Not Found", ae.Message)
	assert.Equal(t, apperr.KindNotFound, ae.Kind())

	ae = apperr.FromEnvelope(http.StatusConflict, apperr.CodeAlreadyEnrolled, "You already own this course", nil)
	assert.Equal(t, apperr.CodeAlreadyEnrolled, ae.Code)
	assert.Equal(t, "You already own this course", ae.Error())
}

/*
TestHelpers_WrappedChain verifies lookups through fmt.Errorf wrapping.
*/
func TestHelpers_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("cart_add_failed: %w", apperr.BusinessConflict(apperr.CodeAlreadyInCart, "Course is already in your cart"))

	require.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeAlreadyInCart))
	assert.False(t, apperr.HasCode(wrapped, apperr.CodeAlreadyEnrolled))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(wrapped))

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("plain")))
	assert.Nil(t, apperr.As(errors.New("plain")))
}
