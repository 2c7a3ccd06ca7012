// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Edura.

The same error type travels in both directions: the sandbox backend renders it
into the JSON error envelope, and the client decodes that envelope back into it.

Architecture:

  - AppError: A struct containing machine-readable Code and a user-friendly message.
  - Kind: A coarse classification (transport, unauthorized, validation, conflict,
    not found...) that callers switch on instead of inspecting message text.
  - Mapping: Explicit mapping between AppError and standard HTTP Status Codes.

Every error that reaches a view should be an [AppError] so that it can be shown
as a displayable message.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

// Machine-readable codes shared with the backend contract.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeValidation       = "VALIDATION_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnprocessable    = "UNPROCESSABLE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeTransport        = "TRANSPORT_ERROR"
	CodeSessionRefreshed = "SESSION_REFRESHED"
	CodeSessionExpired   = "SESSION_EXPIRED"

	// Business-rule conflicts.
	CodeAlreadyInCart   = "ALREADY_IN_CART"
	CodeAlreadyEnrolled = "ALREADY_ENROLLED"
	CodeEmptyCart       = "EMPTY_CART"
)

// Kind classifies an [AppError] into the categories a view reacts to.
type Kind string

const (
	KindTransport    Kind = "transport"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// AppError is the canonical error type for Edura.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for logging only and is never serialized.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "ALREADY_IN_CART").
	Code string `json:"code"`
	// Message is a human-readable description safe to display.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Kind derives the error category from the status code, falling back to the code
// for errors that never crossed the wire.
func (e *AppError) Kind() Kind {
	switch e.Code {
	case CodeTransport:
		return KindTransport
	case CodeValidation:
		return KindValidation
	case CodeAlreadyInCart, CodeAlreadyEnrolled, CodeConflict:
		return KindConflict
	case CodeSessionRefreshed, CodeSessionExpired:
		return KindUnauthorized
	}

	switch {
	case e.HTTPStatus == http.StatusUnauthorized:
		return KindUnauthorized
	case e.HTTPStatus == http.StatusForbidden:
		return KindForbidden
	case e.HTTPStatus == http.StatusNotFound:
		return KindNotFound
	case e.HTTPStatus == http.StatusConflict:
		return KindConflict
	case e.HTTPStatus == http.StatusTooManyRequests:
		return KindRateLimited
	case e.HTTPStatus == http.StatusBadRequest, e.HTTPStatus == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindInternal
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Course") // Returns "Course not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// BusinessConflict creates a 409 [AppError] carrying a specific business-rule code
// such as [CodeAlreadyInCart].
func BusinessConflict(code, msg string) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Session Errors

// SessionRefreshed reports that the request was rejected but the access token has
// since been renewed. The caller may retry the operation.
func SessionRefreshed() *AppError {
	return &AppError{
		Code:       CodeSessionRefreshed,
		Message:    "Your session was renewed. Please try again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionExpired reports that the session could not be renewed and was cleared.
func SessionExpired(cause error) *AppError {
	return &AppError{
		Code:       CodeSessionExpired,
		Message:    "Your session has expired. Please log in again.",
		HTTPStatus: http.StatusUnauthorized,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected error.
// The cause is stored for logging but is never serialized.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Transport wraps a network failure (DNS, refused connection, timeout) that
// prevented any response from being received.
func Transport(cause error) *AppError {
	return &AppError{
		Code:    CodeTransport,
		Message: "Unable to reach the server. Check your connection and retry.",
		Cause:   cause,
	}
}

// # Wire Decoding

// FromEnvelope rebuilds an [AppError] from a decoded error envelope.
//
// Missing codes are derived from the status so that even a bare backend error
// still lands in the right [Kind].
func FromEnvelope(status int, code, message string, details []FieldError) *AppError {
	if code == "" {
		code = codeForStatus(status)
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Details:    details,
	}
}

// codeForStatus maps an HTTP status to the generic code used when the
// backend did not provide one.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeUnprocessable
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// KindOf returns the [Kind] of err. Errors outside the AppError family are internal.
func KindOf(err error) Kind {
	if ae := As(err); ae != nil {
		return ae.Kind()
	}
	return KindInternal
}

// HasCode reports whether err carries the given machine-readable code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
