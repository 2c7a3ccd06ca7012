// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package payment models purchase transactions and the income statistics built
// from them.
//
// The client only displays payments and requests status transitions. It never
// decides a transition itself.
package payment

import (
	"time"

	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/internal/platform/validate"
)

// Status is the state of a payment.
type Status string

const (
	// StatusPending is a payment awaiting gateway or admin confirmation.
	StatusPending Status = "pending"
	// StatusSuccess is a confirmed payment. Its courses are enrolled.
	StatusSuccess Status = "success"
	// StatusFailed is a rejected or abandoned payment.
	StatusFailed Status = "failed"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Method names a payment channel.
type Method string

const (
	MethodVNPay        Method = "vnpay"
	MethodMomo         Method = "momo"
	MethodBankTransfer Method = "bank_transfer"
)

// Payment is a transaction record.
type Payment struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	UserEmail     string       `json:"user_email,omitempty"`
	Amount        money.Amount `json:"amount"`
	Method        Method       `json:"method"`
	Status        Status       `json:"status"`
	TransactionID string       `json:"transaction_id,omitempty"`
	CourseIDs     []int64      `json:"course_ids,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
}

// StatusUpdate is the body of PATCH /payments/:id/status.
type StatusUpdate struct {
	Status        Status `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Validate rejects unknown statuses before they reach the network.
func (u StatusUpdate) Validate() error {
	validator := &validate.Validator{}
	validator.OneOf("status", string(u.Status), string(StatusPending), string(StatusSuccess), string(StatusFailed))
	return validator.Err()
}

// CheckoutRequest starts a payment for the whole cart.
type CheckoutRequest struct {
	Method Method `json:"method"`
}

// Validate rejects unknown payment methods.
func (r CheckoutRequest) Validate() error {
	validator := &validate.Validator{}
	validator.OneOf("method", string(r.Method), string(MethodVNPay), string(MethodMomo), string(MethodBankTransfer))
	return validator.Err()
}

// CheckoutResult is a pending payment and the gateway page that completes it.
type CheckoutResult struct {
	Payment    Payment `json:"payment"`
	PaymentURL string  `json:"payment_url"`
}
