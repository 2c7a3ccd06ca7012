// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/pkg/slice"
)

// SortOrder names a listing order.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortRating    SortOrder = "rating"
)

// IsValid reports whether s is a recognised [SortOrder] value. Empty means unsorted.
func (s SortOrder) IsValid() bool {
	switch s {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortRating:
		return true
	}
	return false
}

// Filter holds the client-side listing criteria.
//
// # Semantics
//
// Criteria combine with AND. Price bounds apply to the effective (discounted)
// price. A nil bound is unbounded. Search matches the title or description,
// ignoring case.
type Filter struct {
	CategoryIDs []int64
	MinPrice    *money.Amount
	MaxPrice    *money.Amount
	MinRating   money.Amount
	Search      string
	Sort        SortOrder
}

// IsZero reports whether the filter keeps every course in its original order.
func (f Filter) IsZero() bool {
	return len(f.CategoryIDs) == 0 && f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinRating <= 0 && strings.TrimSpace(f.Search) == "" && f.Sort == ""
}

// Match reports whether a single course passes the filter.
func (f Filter) Match(course Course) bool {
	if len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, course.CategoryID) {
		return false
	}

	price := course.EffectivePrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}

	if course.Rating < f.MinRating {
		return false
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		folder := cases.Fold()
		needle := folder.String(term)
		if !strings.Contains(folder.String(course.Title), needle) &&
			!strings.Contains(folder.String(course.Description), needle) {
			return false
		}
	}

	return true
}

// Apply returns the matching courses in the requested order. The input is not modified.
func (f Filter) Apply(courses []Course) []Course {
	matched := slice.Filter(courses, f.Match)

	switch f.Sort {
	case SortNewest:
		slices.SortStableFunc(matched, func(a, b Course) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case SortPriceAsc:
		slices.SortStableFunc(matched, func(a, b Course) int { return cmp.Compare(a.EffectivePrice(), b.EffectivePrice()) })
	case SortPriceDesc:
		slices.SortStableFunc(matched, func(a, b Course) int { return cmp.Compare(b.EffectivePrice(), a.EffectivePrice()) })
	case SortRating:
		slices.SortStableFunc(matched, func(a, b Course) int { return cmp.Compare(b.Rating, a.Rating) })
	}

	return matched
}
