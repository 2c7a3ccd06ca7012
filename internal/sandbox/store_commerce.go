// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"slices"
	"time"

	"golang.org/x/text/currency"

	"github.com/taibuivan/edura/internal/cart"
	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/payment"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/pkg/slice"
)

// # Cart

// Cart returns a user's cart.
func (store *Store) Cart(userID int64) cart.Cart {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.cartLocked(userID)
}

// cartLocked copies a user's cart. The caller must hold the lock.
func (store *Store) cartLocked(userID int64) cart.Cart {
	return cart.Cart{ID: userID, UserID: userID, Items: append([]cart.Item{}, store.carts[userID]...)}
}

/*
AddToCart snapshots the course's current price into a new cart line.

Returns:
  - error: NotFound for unknown or inactive courses, ALREADY_ENROLLED for owned
    courses, ALREADY_IN_CART for duplicates
*/
func (store *Store) AddToCart(userID, courseID int64) (cart.Cart, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	course, ok := store.courses[courseID]
	if !ok || !course.IsActive {
		return cart.Cart{}, apperr.NotFound("Course")
	}

	if store.ownsLocked(userID, courseID) {
		return cart.Cart{}, apperr.BusinessConflict(apperr.CodeAlreadyEnrolled, "You already own this course")
	}

	current := store.cartLocked(userID)
	if current.Contains(courseID) {
		return cart.Cart{}, apperr.BusinessConflict(apperr.CodeAlreadyInCart, "This course is already in your cart")
	}

	store.carts[userID] = append(store.carts[userID], cart.SnapshotOf(course))
	return store.cartLocked(userID), nil
}

// RemoveFromCart drops one line. Removing an absent course is a no-op.
func (store *Store) RemoveFromCart(userID, courseID int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.removeFromCartLocked(userID, courseID)
}

func (store *Store) removeFromCartLocked(userID int64, courseIDs ...int64) {
	store.carts[userID] = slices.DeleteFunc(store.carts[userID], func(item cart.Item) bool {
		return slices.Contains(courseIDs, item.CourseID)
	})
}

// ClearCart empties a user's cart.
func (store *Store) ClearCart(userID int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.carts, userID)
}

// # Enrollments

// Enrollments lists a user's enrollments with their courses attached.
func (store *Store) Enrollments(userID int64) []catalog.Enrollment {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.enrollmentsLocked(userID)
}

func (store *Store) enrollmentsLocked(userID int64) []catalog.Enrollment {
	owned := []catalog.Enrollment{}
	for _, enrollment := range store.enrollments {
		if enrollment.UserID != userID {
			continue
		}
		if course, ok := store.courses[enrollment.CourseID]; ok {
			enrollment.Course = &course
		}
		owned = append(owned, enrollment)
	}
	return owned
}

func (store *Store) ownsLocked(userID, courseID int64) bool {
	return slices.ContainsFunc(store.enrollments, func(enrollment catalog.Enrollment) bool {
		return enrollment.UserID == userID && enrollment.CourseID == courseID
	})
}

// Enroll grants ownership of a course. Enrolling twice is a no-op.
func (store *Store) Enroll(userID, courseID int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.enrollLocked(userID, courseID, time.Now().UTC())
}

func (store *Store) enrollLocked(userID, courseID int64, at time.Time) {
	if store.ownsLocked(userID, courseID) {
		return
	}
	store.enrollments = append(store.enrollments, catalog.Enrollment{
		ID:         store.id(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: at,
	})
}

// # Payments

// Payments lists payments, all of them when userID is 0.
func (store *Store) Payments(userID int64) []payment.Payment {
	store.mu.Lock()
	defer store.mu.Unlock()

	payments := []payment.Payment{}
	for _, found := range sortedValues(store.payments) {
		if userID == 0 || found.UserID == userID {
			payments = append(payments, found)
		}
	}
	return payments
}

/*
OpenPayment prices the user's cart and records a pending payment for it.

Lines for courses the user already owns are dropped from the cart first. The
amount is the snapshot total rounded in the given currency.

Returns:
  - error: EMPTY_CART when nothing is left to pay for
*/
func (store *Store) OpenPayment(userID int64, email string, method payment.Method, unit currency.Unit) (payment.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	current := store.cartLocked(userID)
	checkout := cart.Reconcile(&current, store.enrollmentsLocked(userID), unit)

	for _, owned := range checkout.Owned {
		store.removeFromCartLocked(userID, owned.CourseID)
	}
	if checkout.IsEmpty() {
		return payment.Payment{}, apperr.BusinessConflict(apperr.CodeEmptyCart, "Your cart is empty")
	}

	courseIDs := slice.Map(checkout.Items, func(item cart.Item) int64 { return item.CourseID })

	opened := payment.Payment{
		ID:        store.id(),
		UserID:    userID,
		UserEmail: email,
		Amount:    checkout.Total,
		Method:    method,
		Status:    payment.StatusPending,
		CourseIDs: courseIDs,
		CreatedAt: time.Now().UTC(),
	}
	store.payments[opened.ID] = opened

	return opened, nil
}

/*
SetPaymentStatus applies a status transition.

A successful payment is final. Moving to success enrolls the user in every
purchased course and removes those courses from the cart.
*/
func (store *Store) SetPaymentStatus(id int64, update payment.StatusUpdate) (payment.Payment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	found, ok := store.payments[id]
	if !ok {
		return payment.Payment{}, apperr.NotFound("Payment")
	}
	if found.Status == update.Status {
		return found, nil
	}
	if found.Status == payment.StatusSuccess {
		return payment.Payment{}, apperr.Conflict("A successful payment cannot change status")
	}

	found.Status = update.Status
	if update.TransactionID != "" {
		found.TransactionID = update.TransactionID
	}

	if update.Status == payment.StatusSuccess {
		now := time.Now().UTC()
		found.PaidAt = &now
		for _, courseID := range found.CourseIDs {
			store.enrollLocked(found.UserID, courseID, now)
		}
		store.removeFromCartLocked(found.UserID, found.CourseIDs...)
	}

	store.payments[id] = found
	return found, nil
}

// PaymentStats summarises every payment.
func (store *Store) PaymentStats() payment.Stats {
	return payment.Summarize(store.Payments(0))
}
