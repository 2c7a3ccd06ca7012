// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cart reconciles a user's cart with their enrollments and prices it.

# Snapshot Pricing

Each cart line carries the price (and optional discounted price) captured when
the course was added. Totals are computed from those snapshots only and never
from the live course record, so a later price change does not alter what the
user is charged for a line already in the cart.
*/
package cart

import (
	"encoding/json"

	"golang.org/x/text/currency"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/pkg/pointer"
	"github.com/taibuivan/edura/pkg/slice"
)

// Item is one cart line with its price snapshot.
type Item struct {
	CourseID        int64         `json:"course_id"`
	Title           string        `json:"title"`
	Price           money.Amount  `json:"price"`
	DiscountedPrice *money.Amount `json:"discounted_price,omitempty"`
	Thumbnail       string        `json:"thumbnail,omitempty"`
}

// UnmarshalJSON decodes a line. A malformed or negative discounted snapshot is
// treated as absent, so the line is charged at its price.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	wire := struct {
		*plain
		DiscountedPrice json.RawMessage `json:"discounted_price"`
	}{plain: (*plain)(i)}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	i.DiscountedPrice = catalog.SuppliedPrice(wire.DiscountedPrice)
	return nil
}

// Contribution is the line's share of the total: the discounted snapshot when it
// is present, not negative and lower than the price, the price otherwise.
func (i Item) Contribution() money.Amount {
	if i.DiscountedPrice != nil && *i.DiscountedPrice >= 0 && *i.DiscountedPrice < i.Price {
		return *i.DiscountedPrice
	}
	return i.Price
}

// Savings is how much the discount takes off the line.
func (i Item) Savings() money.Amount {
	return i.Price - i.Contribution()
}

// SnapshotOf captures the current price of a course as a new cart line.
func SnapshotOf(course catalog.Course) Item {
	item := Item{
		CourseID:  course.ID,
		Title:     course.Title,
		Price:     course.Price,
		Thumbnail: course.Thumbnail,
	}
	if course.HasDiscount() || course.DiscountedPrice != nil {
		item.DiscountedPrice = pointer.To(course.EffectivePrice())
	}
	return item
}

// Cart is a user's pending purchases.
type Cart struct {
	ID     int64  `json:"id,omitempty"`
	UserID int64  `json:"user_id,omitempty"`
	Items  []Item `json:"items"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Contains reports whether the course already has a line in the cart.
func (c *Cart) Contains(courseID int64) bool {
	if c == nil {
		return false
	}
	for _, item := range c.Items {
		if item.CourseID == courseID {
			return true
		}
	}
	return false
}

// Subtotal sums the line contributions.
func (c *Cart) Subtotal() money.Amount {
	if c == nil {
		return 0
	}
	return sum(c.Items, Item.Contribution)
}

// Total is the subtotal rounded with the standard rounding of the display currency.
func (c *Cart) Total(unit currency.Unit) money.Amount {
	return money.Round(c.Subtotal(), unit)
}

// sum adds up value over items.
func sum(items []Item, value func(Item) money.Amount) money.Amount {
	return slice.Reduce(items, money.Amount(0), func(total money.Amount, item Item) money.Amount {
		return total + value(item)
	})
}
