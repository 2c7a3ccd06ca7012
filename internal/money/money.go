// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package money holds the numeric type used for every price, discount and total.

# Lenient decoding

Backend numeric fields are decoded leniently: numbers, numeric strings, null,
missing fields and garbage all decode successfully, with anything unusable
becoming zero. A malformed price must degrade the display, never break it.

# Display currency

Rounding and formatting follow the CLDR rules of the display currency through
golang.org/x/text/currency (VND has no minor unit, USD has two, etc).
*/
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a monetary value or percentage in the display currency's major unit.
type Amount float64

// Float returns the amount as a plain float64.
func (a Amount) Float() float64 { return float64(a) }

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else is zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Parse(data)
	return nil
}

// Parse converts a raw JSON token into an Amount, coercing failures to zero.
func Parse(data []byte) Amount {
	value, _ := parse(data)
	return value
}

// ParseOptional converts a raw JSON token for an optional field. Null, missing
// and malformed values are reported as absent (nil) rather than zero.
func ParseOptional(data []byte) *Amount {
	value, ok := parse(data)
	if !ok {
		return nil
	}
	return &value
}

// parse reports whether data held a usable finite number.
func parse(data []byte) (Amount, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false
	}

	var number float64
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	} else if err := json.Unmarshal(trimmed, &number); err != nil {
		return 0, false
	}

	return sanitize(number)
}

// sanitize maps non-finite values to zero.
func sanitize(value float64) (Amount, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return Amount(value), true
}

// # Currency

// VND is the default display currency.
var VND = currency.MustParseISO("VND")

// Currency resolves an ISO 4217 code, falling back to VND for unknown codes.
func Currency(code string) currency.Unit {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return VND
	}
	return unit
}

// Round rounds the amount using the standard rounding of the currency
// (scale and cash increment).
func Round(amount Amount, unit currency.Unit) Amount {
	scale, increment := currency.Standard.Rounding(unit)
	factor := math.Pow10(scale)
	step := float64(increment)
	if step <= 0 {
		step = 1
	}

	scaled := float64(amount) * factor / step
	return Amount(math.Round(scaled) * step / factor)
}

// Formatter renders amounts for a locale and currency.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a formatter. Unknown locales fall back to Vietnamese.
func NewFormatter(currencyCode, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Vietnamese
	}

	return &Formatter{
		unit:    Currency(currencyCode),
		printer: message.NewPrinter(tag),
	}
}

// Unit returns the display currency.
func (f *Formatter) Unit() currency.Unit { return f.unit }

// Format rounds the amount and renders it with the currency symbol.
func (f *Formatter) Format(amount Amount) string {
	rounded := Round(amount, f.unit)
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(float64(rounded))))
}

// Percent renders a discount percentage, e.g. "-20%".
func (f *Formatter) Percent(pct Amount) string {
	return f.printer.Sprintf("-%v%%", float64(pct))
}

// String implements fmt.Stringer for debug output.
func (a Amount) String() string {
	return fmt.Sprintf("%.2f", float64(a))
}
