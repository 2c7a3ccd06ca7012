// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/edura/internal/payment"
	"github.com/taibuivan/edura/internal/platform/ctxutil"
	"github.com/taibuivan/edura/internal/platform/respond"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/platform/validate"
	requestutil "github.com/taibuivan/edura/internal/platform/request"
	"github.com/taibuivan/edura/pkg/uuid"
)

// gatewayPath is where the simulated payment gateway confirms a payment.
const gatewayPath = "/payments/gateway/"

// # Cart

// getCart handles GET /cart.
func (handler *Handler) getCart(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.store.Cart(claims.UserID))
}

// addCartItem handles POST /cart/items.
//
// # Returns
//   - 200 with the updated cart.
//   - 404 for unknown or inactive courses.
//   - 409 ALREADY_IN_CART or ALREADY_ENROLLED.
func (handler *Handler) addCartItem(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		CourseID int64 `json:"course_id"`
	}
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Positive("course_id", input.CourseID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.store.AddToCart(claims.UserID, input.CourseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// removeCartItem handles DELETE /cart/items/{course_id}.
func (handler *Handler) removeCartItem(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID, err := requestutil.ID(request, "course_id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.store.RemoveFromCart(claims.UserID, courseID)
	respond.NoContent(writer)
}

// clearCart handles DELETE /cart.
func (handler *Handler) clearCart(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.store.ClearCart(claims.UserID)
	respond.NoContent(writer)
}

// # Enrollments

// listEnrollments handles GET /enrollments.
func (handler *Handler) listEnrollments(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.store.Enrollments(claims.UserID))
}

// # Payments

// listPayments handles GET /payments. Admins see every payment, others their own.
func (handler *Handler) listPayments(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	owner := claims.UserID
	if claims.Role == sec.RoleAdmin {
		owner = 0
	}
	respond.OK(writer, handler.store.Payments(owner))
}

// checkout handles POST /payments/checkout.
//
// It opens a pending payment for the whole cart and returns the gateway page
// that completes it.
func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input payment.CheckoutRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := input.Validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	opened, err := handler.store.OpenPayment(claims.UserID, claims.Email, input.Method, handler.currency)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "payment_opened",
		slog.Int64("payment_id", opened.ID),
		slog.Int64("user_id", claims.UserID),
		slog.String("method", string(opened.Method)),
	)

	respond.Created(writer, payment.CheckoutResult{
		Payment:    opened,
		PaymentURL: fmt.Sprintf("%s%s%d", strings.TrimSuffix(handler.cfg.PublicURL, "/"), gatewayPath, opened.ID),
	})
}

// gatewayReturn handles GET /payments/gateway/{id}?result=success|failed.
//
// It stands in for the payment provider's return URL. The default result is
// success, which enrolls the buyer.
func (handler *Handler) gatewayReturn(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	update := payment.StatusUpdate{Status: payment.StatusSuccess, TransactionID: uuid.New()}
	if request.URL.Query().Get("result") == string(payment.StatusFailed) {
		update.Status = payment.StatusFailed
	}

	updated, err := handler.store.SetPaymentStatus(id, update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// paymentStats handles GET /payments/stats.
func (handler *Handler) paymentStats(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.store.PaymentStats())
}

// updatePaymentStatus handles PATCH /payments/{id}/status.
func (handler *Handler) updatePaymentStatus(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var update payment.StatusUpdate
	if err := requestutil.DecodeJSON(writer, request, &update); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := update.Validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.store.SetPaymentStatus(id, update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "payment_status_changed",
		slog.Int64("payment_id", updated.ID),
		slog.String("status", string(updated.Status)),
	)

	respond.OK(writer, updated)
}
