package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PromoKind string

const (
	PromoPercentage   PromoKind = "percentage"
	PromoFixed        PromoKind = "fixed"
	PromoFreeShipping PromoKind = "free_shipping"
)

type PromoCode struct {
	Code  string          `json:"code"`
	Kind  PromoKind       `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// PromoStatus separates "nothing entered" from "entered but rejected".
type PromoStatus string

const (
	PromoStatusApplied PromoStatus = "applied"
	PromoStatusEmpty   PromoStatus = "empty"
	PromoStatusInvalid PromoStatus = "invalid"
	PromoStatusRemoved PromoStatus = "removed"
)

func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultPromoCodes mirrors the codes the storefront has always accepted.
func DefaultPromoCodes() map[string]PromoCode {
	return map[string]PromoCode{
		"WELCOME10": {Code: "WELCOME10", Kind: PromoPercentage, Value: decimal.RequireFromString("0.10")},
		"FREESHIP":  {Code: "FREESHIP", Kind: PromoFreeShipping, Value: decimal.Zero},
		"SAVE25":    {Code: "SAVE25", Kind: PromoFixed, Value: decimal.RequireFromString("25.00")},
	}
}

type ApplyPromoRequest struct {
	Code string `json:"code" validate:"max=32"`
}

type PromoResult struct {
	Status  PromoStatus `json:"status"`
	Promo   *PromoCode  `json:"promo,omitempty"`
	Totals  TotalsView  `json:"totals"`
	Message string      `json:"message"`
}
