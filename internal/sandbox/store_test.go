// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/internal/payment"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/sandbox"
	"github.com/taibuivan/edura/internal/session"
)

// seededStore returns a store with the demo data and the student's account.
func seededStore(t *testing.T) (*sandbox.Store, session.User) {
	t.Helper()

	store := sandbox.NewStore()
	require.NoError(t, sandbox.Seed(store))

	found, ok := store.AccountByEmail(sandbox.SeedStudentEmail)
	require.True(t, ok)
	return store, found.User
}

// courseByTitle looks a seeded course up by its title.
func courseByTitle(t *testing.T, store *sandbox.Store, title string) catalog.Course {
	t.Helper()

	for _, course := range store.Courses() {
		if course.Title == title {
			return course
		}
	}
	t.Fatalf("course %q not seeded", title)
	return catalog.Course{}
}

/*
TestStore_AddToCart covers the cart conflict rules.
*/
func TestStore_AddToCart(t *testing.T) {
	store, student := seededStore(t)

	owned := courseByTitle(t, store, "Go từ cơ bản đến nâng cao")
	fresh := courseByTitle(t, store, "Khởi nghiệp tinh gọn")
	hidden := courseByTitle(t, store, "Quản lý tài chính cá nhân")

	_, err := store.AddToCart(student.ID, owned.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyEnrolled))

	updated, err := store.AddToCart(student.ID, fresh.ID)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, money.Amount(450_000), updated.Items[0].Price)
	require.NotNil(t, updated.Items[0].DiscountedPrice)
	assert.Equal(t, money.Amount(225_000), *updated.Items[0].DiscountedPrice)

	_, err = store.AddToCart(student.ID, fresh.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyInCart))

	_, err = store.AddToCart(student.ID, hidden.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

/*
TestStore_PaymentLifecycle opens a payment and confirms it.
*/
func TestStore_PaymentLifecycle(t *testing.T) {
	store, student := seededStore(t)
	course := courseByTitle(t, store, "Figma cho người mới bắt đầu")

	_, err := store.AddToCart(student.ID, course.ID)
	require.NoError(t, err)

	opened, err := store.OpenPayment(student.ID, student.Email, payment.MethodMomo, money.VND)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, opened.Status)
	assert.Equal(t, money.Amount(585_000), opened.Amount)
	assert.Equal(t, []int64{course.ID}, opened.CourseIDs)

	confirmed, err := store.SetPaymentStatus(opened.ID, payment.StatusUpdate{Status: payment.StatusSuccess, TransactionID: "tx-1"})
	require.NoError(t, err)
	require.NotNil(t, confirmed.PaidAt)
	assert.Equal(t, "tx-1", confirmed.TransactionID)

	// ── Enrollment and cart cleanup ──
	owned := catalog.EnrolledIDs(store.Enrollments(student.ID))
	assert.Contains(t, owned, course.ID)
	current := store.Cart(student.ID)
	assert.True(t, current.IsEmpty())

	// ── Success is final ──
	_, err = store.SetPaymentStatus(opened.ID, payment.StatusUpdate{Status: payment.StatusFailed})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

/*
TestStore_OpenPayment_DropsOwnedLines verifies checkout never charges for owned courses.
*/
func TestStore_OpenPayment_DropsOwnedLines(t *testing.T) {
	store, student := seededStore(t)
	course := courseByTitle(t, store, "Xây dựng REST API với chi")

	_, err := store.AddToCart(student.ID, course.ID)
	require.NoError(t, err)
	store.Enroll(student.ID, course.ID)

	_, err = store.OpenPayment(student.ID, student.Email, payment.MethodVNPay, money.VND)
	assert.True(t, apperr.HasCode(err, apperr.CodeEmptyCart))

	current := store.Cart(student.ID)
	assert.True(t, current.IsEmpty())
}

/*
TestStore_DeleteGuards verifies owned courses and used categories are kept.
*/
func TestStore_DeleteGuards(t *testing.T) {
	store, _ := seededStore(t)
	owned := courseByTitle(t, store, "Go từ cơ bản đến nâng cao")

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(store.DeleteCourse(owned.ID)))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(store.DeleteCategory(owned.CategoryID)))

	unowned := courseByTitle(t, store, "Quản lý tài chính cá nhân")
	require.NoError(t, store.DeleteCourse(unowned.ID))
	_, err := store.Lessons(unowned.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

/*
TestStore_RefreshSessions covers expiry, revocation and password resets.
*/
func TestStore_RefreshSessions(t *testing.T) {
	store, student := seededStore(t)
	now := time.Now()

	store.SaveRefreshSession("live", student.ID, now.Add(time.Hour))
	store.SaveRefreshSession("stale", student.ID, now.Add(-time.Second))

	userID, ok := store.ActiveRefreshSession("live", now)
	assert.True(t, ok)
	assert.Equal(t, student.ID, userID)

	_, ok = store.ActiveRefreshSession("stale", now)
	assert.False(t, ok)

	store.RevokeRefreshSession("live")
	_, ok = store.ActiveRefreshSession("live", now)
	assert.False(t, ok)

	// ── A reset token is single use and revokes sessions ──
	store.SaveRefreshSession("other", student.ID, now.Add(time.Hour))
	store.SaveResetToken("reset", student.ID, now.Add(time.Hour))

	userID, ok = store.ConsumeResetToken("reset", now)
	require.True(t, ok)
	require.NoError(t, store.SetPassword(userID, "new-hash"))

	_, ok = store.ConsumeResetToken("reset", now)
	assert.False(t, ok)
	_, ok = store.ActiveRefreshSession("other", now)
	assert.False(t, ok)
}
