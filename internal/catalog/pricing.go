// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/pkg/pointer"
)

// # Pricing Rule

// DiscountedPrice applies a percentage discount to base.
//
//	pct > 0  → base × (1 − pct/100)
//	pct ≤ 0  → base
//
// pct is clamped to [0, 100]. Inputs are validated long before this point, so
// clamping only ever affects coerced backend values.
func DiscountedPrice(base, pct money.Amount) money.Amount {
	pct = clampPercentage(pct)
	if pct <= 0 {
		return base
	}
	return base * (1 - pct/100)
}

// clampPercentage bounds a percentage to [0, 100].
func clampPercentage(pct money.Amount) money.Amount {
	return min(max(pct, 0), 100)
}

// EffectivePrice is what a buyer pays for the course right now.
// A discounted price supplied by the backend takes precedence over the formula.
func (c *Course) EffectivePrice() money.Amount {
	return pointer.Fallback(c.DiscountedPrice, DiscountedPrice(c.Price, c.DiscountPercentage))
}

// HasDiscount reports whether the course is on sale.
func (c *Course) HasDiscount() bool {
	return clampPercentage(c.DiscountPercentage) > 0
}

// PriceView is the displayable form of a course price.
//
// When HasDiscount is true both prices are shown: Original struck through and Final
// next to it. Otherwise only Final is shown. Final is always [Course.EffectivePrice].
type PriceView struct {
	Original           money.Amount
	Final              money.Amount
	HasDiscount        bool
	DiscountPercentage money.Amount
}

// PriceView derives the display price of the course.
func (c *Course) PriceView() PriceView {
	if !c.HasDiscount() {
		return PriceView{Original: c.Price, Final: c.EffectivePrice()}
	}

	return PriceView{
		Original:           c.Price,
		Final:              c.EffectivePrice(),
		HasDiscount:        true,
		DiscountPercentage: clampPercentage(c.DiscountPercentage),
	}
}

// Render formats the view with formatter, e.g. "1.000.000 ₫ → 800.000 ₫ (-20%)".
func (view PriceView) Render(formatter *money.Formatter) string {
	if !view.HasDiscount {
		return formatter.Format(view.Final)
	}
	return formatter.Format(view.Original) + " → " + formatter.Format(view.Final) + " (" + formatter.Percent(view.DiscountPercentage) + ")"
}
