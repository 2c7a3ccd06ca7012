// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"net/http"

	"github.com/taibuivan/edura/internal/payment"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/transport"
)

// PaymentService covers /payments.
type PaymentService struct {
	transport *transport.Client
}

// List returns payments: every payment for admins, the caller's own otherwise.
func (service *PaymentService) List(ctx context.Context) ([]payment.Payment, error) {
	payments := []payment.Payment{}
	if err := get(ctx, service.transport, constants.PathPayments, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateStatus requests a status transition (admin only). The backend decides
// the consequences, such as enrolling the purchased courses.
func (service *PaymentService) UpdateStatus(ctx context.Context, id int64, update payment.StatusUpdate) (*payment.Payment, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var updated payment.Payment
	if err := send(ctx, service.transport, http.MethodPatch, resourcePath(constants.PathPayments, id, "status"), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Stats returns the income statistics (admin only).
func (service *PaymentService) Stats(ctx context.Context) (*payment.Stats, error) {
	var stats payment.Stats
	if err := get(ctx, service.transport, constants.PathPayments+"/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Checkout opens a pending payment for the whole cart and returns the gateway
// URL that completes it.
func (service *PaymentService) Checkout(ctx context.Context, method payment.Method) (*payment.CheckoutResult, error) {
	request := payment.CheckoutRequest{Method: method}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var result payment.CheckoutResult
	if err := send(ctx, service.transport, http.MethodPost, constants.PathPayments+"/checkout", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
