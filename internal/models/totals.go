package models

import (
	"github.com/shopspring/decimal"
)

// OrderTotals keeps full precision; round only through View.
type OrderTotals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Shipping           decimal.Decimal `json:"shipping"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
}

type TotalsView struct {
	Subtotal           string `json:"subtotal"`
	Shipping           string `json:"shipping"`
	FreeShipping       bool   `json:"free_shipping"`
	Discount           string `json:"discount"`
	DiscountedSubtotal string `json:"discounted_subtotal"`
	Tax                string `json:"tax"`
	Total              string `json:"total"`
}

func (t OrderTotals) View() TotalsView {
	return TotalsView{
		Subtotal:           t.Subtotal.StringFixed(2),
		Shipping:           t.Shipping.StringFixed(2),
		FreeShipping:       t.Shipping.IsZero(),
		Discount:           t.Discount.StringFixed(2),
		DiscountedSubtotal: t.DiscountedSubtotal.StringFixed(2),
		Tax:                t.Tax.StringFixed(2),
		Total:              t.Total.StringFixed(2),
	}
}

// Rounded returns a copy with every amount rounded to cents, for records that outlive the session.
func (t OrderTotals) Rounded() OrderTotals {
	return OrderTotals{
		Subtotal:           t.Subtotal.Round(2),
		Shipping:           t.Shipping.Round(2),
		Discount:           t.Discount.Round(2),
		DiscountedSubtotal: t.DiscountedSubtotal.Round(2),
		Tax:                t.Tax.Round(2),
		Total:              t.Total.Round(2),
	}
}
