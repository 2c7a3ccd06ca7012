// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer helps with the optional (nil-able) fields of the API shapes,
// such as a backend-supplied discounted price or an open filter bound.
package pointer

// To returns a pointer to a copy of v, e.g. pointer.To(money.Amount(50000)).
func To[T any](v T) *T {
	return &v
}

// Fallback dereferences p, or returns fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
