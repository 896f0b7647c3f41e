package service

import (
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/shopspring/decimal"
)

// PricingEngine is stateless; ComputeTotals depends only on its arguments and the configured rules.
type PricingEngine struct {
	rules  config.PricingRules
	promos map[string]models.PromoCode
}

// NewPricingEngine falls back to the built-in promo codes when promos is nil.
func NewPricingEngine(rules config.PricingRules, promos map[string]models.PromoCode) *PricingEngine {
	if promos == nil {
		promos = models.DefaultPromoCodes()
	}

	return &PricingEngine{rules: rules, promos: promos}
}

func (p *PricingEngine) Rules() config.PricingRules {
	return p.rules
}

func (p *PricingEngine) ComputeTotals(lines []models.CartLineItem, promo *models.PromoCode) models.OrderTotals {

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	shipping := p.rules.FlatShippingFee
	if subtotal.IsZero() || subtotal.GreaterThanOrEqual(p.rules.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero

	if promo != nil {
		switch promo.Kind {
		case models.PromoPercentage:
			discount = subtotal.Mul(promo.Value)
		case models.PromoFixed:
			discount = decimal.Min(promo.Value, subtotal)
		case models.PromoFreeShipping:
			shipping = decimal.Zero
		}
	}

	discount = decimal.Min(decimal.Max(discount, decimal.Zero), subtotal)
	discounted := decimal.Max(subtotal.Sub(discount), decimal.Zero)
	tax := discounted.Mul(p.rules.TaxRate)

	return models.OrderTotals{
		Subtotal:           subtotal,
		Shipping:           shipping,
		Discount:           discount,
		DiscountedSubtotal: discounted,
		Tax:                tax,
		Total:              discounted.Add(shipping).Add(tax),
	}
}

// LookupPromo normalizes code before matching; a blank code reports PromoStatusEmpty rather than invalid.
func (p *PricingEngine) LookupPromo(code string) (*models.PromoCode, models.PromoStatus) {

	normalized := models.NormalizePromoCode(code)
	if normalized == "" {
		return nil, models.PromoStatusEmpty
	}

	promo, ok := p.promos[normalized]
	if !ok {
		return nil, models.PromoStatusInvalid
	}

	return &promo, models.PromoStatusApplied
}
