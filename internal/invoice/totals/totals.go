// Package totals computes invoice summary figures from line items.
package totals

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// LineItem is one billable row on an invoice. Numeric fields are typed
// any: values arrive from JSON as numbers, strings or nulls and are
// coerced, never rejected, so a half-typed row still totals.
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    any    `json:"quantity"`
	Unit        string `json:"unit"`
	Rate        any    `json:"rate"`
	TaxRate     any    `json:"taxRate"`
	Optional    bool   `json:"optional"`
}

// Amount returns the item's pre-tax, pre-discount amount.
func (i LineItem) Amount() float64 {
	return Coerce(i.Quantity) * Coerce(i.Rate)
}

// Totals is the derived summary snapshot of an invoice.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	GrandTotal     float64 `json:"total"`
}

// Compute derives the four summary figures from the line items and the
// invoice-level discount and adjustment.
//
// Tax is computed per item on its own undiscounted amount; the discount
// reduces only the taxable base used for the grand total. A fixed
// discount larger than the subtotal is reported unclamped while the
// taxable base floors at zero.
func Compute(items []LineItem, discountType string, discountValue, adjustment any) Totals {
	var subtotal, taxAmount float64
	for _, item := range items {
		quantity := Coerce(item.Quantity)
		rate := Coerce(item.Rate)
		subtotal += quantity * rate
		taxAmount += quantity * rate * Coerce(item.TaxRate) / 100
	}

	var discountAmount float64
	if discountType == DiscountPercent {
		discountAmount = subtotal * Coerce(discountValue) / 100
	} else {
		discountAmount = Coerce(discountValue)
	}

	taxable := subtotal - discountAmount
	if taxable < 0 {
		taxable = 0
	}

	grandTotal := taxable + taxAmount + Coerce(adjustment)

	return Totals{
		Subtotal:       round2(subtotal),
		DiscountAmount: round2(discountAmount),
		TaxAmount:      round2(taxAmount),
		GrandTotal:     round2(grandTotal),
	}
}

// Coerce converts a loosely typed numeric value to a float64, mapping
// anything unparseable to 0.
func Coerce(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// round2 rounds half-up to two decimals. Values like 19.995 sit just
// below the half-cent in float64 (1999.4999...), so the scaled value is
// nudged before flooring.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5+1e-9) / 100
}
