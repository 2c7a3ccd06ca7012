// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"golang.org/x/text/currency"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/money"
)

// Checkout is the priced, purchasable view of a cart.
type Checkout struct {
	// Items are the lines the user will pay for.
	Items []Item

	// Owned are lines for courses the user is already enrolled in. They are
	// excluded from every amount and should be removed from the cart.
	Owned []Item

	Subtotal money.Amount
	Savings  money.Amount
	Total    money.Amount
	Currency currency.Unit
}

// IsEmpty reports whether nothing is left to pay for.
func (c Checkout) IsEmpty() bool {
	return len(c.Items) == 0
}

/*
Reconcile merges the remote cart with the remote enrollments and prices the result.

Lines for owned courses move to Owned. Amounts use the line snapshots only.
Total is the subtotal rounded in the display currency.
*/
func Reconcile(cart *Cart, enrollments []catalog.Enrollment, unit currency.Unit) Checkout {
	checkout := Checkout{Items: []Item{}, Currency: unit}
	if cart == nil {
		return checkout
	}

	owned := catalog.EnrolledIDs(enrollments)
	for _, item := range cart.Items {
		if _, enrolled := owned[item.CourseID]; enrolled {
			checkout.Owned = append(checkout.Owned, item)
			continue
		}
		checkout.Items = append(checkout.Items, item)
	}

	checkout.Subtotal = sum(checkout.Items, Item.Contribution)
	checkout.Savings = sum(checkout.Items, Item.Savings)
	checkout.Total = money.Round(checkout.Subtotal, unit)

	return checkout
}
