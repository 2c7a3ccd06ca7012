// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"

	"github.com/taibuivan/edura/internal/cart"
	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/validate"
	"github.com/taibuivan/edura/internal/transport"
)

// # Cart

// CartService covers /cart.
type CartService struct {
	transport   *transport.Client
	enrollments *EnrollmentService
}

type addItemRequest struct {
	CourseID int64 `json:"course_id"`
}

// Get returns the current user's cart.
func (service *CartService) Get(ctx context.Context) (*cart.Cart, error) {
	current := &cart.Cart{Items: []cart.Item{}}
	if err := get(ctx, service.transport, constants.PathCart, current); err != nil {
		return nil, err
	}
	return current, nil
}

/*
Add puts a course in the cart and returns the updated cart.

Returns:
  - error: ALREADY_IN_CART or ALREADY_ENROLLED conflicts are reported with those
    codes; match them with [apperr.HasCode].
*/
func (service *CartService) Add(ctx context.Context, courseID int64) (*cart.Cart, error) {
	validator := &validate.Validator{}
	if err := validator.Positive("course_id", courseID).Err(); err != nil {
		return nil, err
	}

	updated := &cart.Cart{Items: []cart.Item{}}
	if err := send(ctx, service.transport, http.MethodPost, constants.PathCartItems, addItemRequest{CourseID: courseID}, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove drops one course from the cart.
func (service *CartService) Remove(ctx context.Context, courseID int64) error {
	return send(ctx, service.transport, http.MethodDelete, resourcePath(constants.PathCartItems, courseID), nil, nil)
}

// Clear empties the cart.
func (service *CartService) Clear(ctx context.Context) error {
	return send(ctx, service.transport, http.MethodDelete, constants.PathCart, nil, nil)
}

// Reconcile fetches the cart and the enrollments concurrently and prices the
// purchasable remainder in the display currency.
func (service *CartService) Reconcile(ctx context.Context, unit currency.Unit) (cart.Checkout, error) {
	var current *cart.Cart
	var enrollments []catalog.Enrollment

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		current, err = service.Get(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		enrollments, err = service.enrollments.List(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return cart.Checkout{}, err
	}

	return cart.Reconcile(current, enrollments, unit), nil
}

// # Enrollments

// EnrollmentService covers /enrollments.
type EnrollmentService struct {
	transport *transport.Client
}

// List returns the current user's enrollments.
func (service *EnrollmentService) List(ctx context.Context) ([]catalog.Enrollment, error) {
	enrollments := []catalog.Enrollment{}
	if err := get(ctx, service.transport, constants.PathEnrollments, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}
