package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

type ContactInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

type Order struct {
	ID            string          `json:"order_id"`
	Customer      ContactInfo     `json:"customer"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CardLast4     string          `json:"card_last4,omitempty"`
	Items         []CartLineItem  `json:"items"`
	PromoCode     string          `json:"promo_code,omitempty"`
	Totals        OrderTotals     `json:"totals"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"order_date"`
}

// SubmissionState tracks Idle -> Submitting -> {Confirmed, Failed}; Failed falls back to Idle.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionConfirmed  SubmissionState = "confirmed"
	SubmissionFailed     SubmissionState = "failed"
)

type OrderResult struct {
	State     SubmissionState `json:"state"`
	Order     *Order          `json:"order,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Retryable bool            `json:"retryable,omitempty"`
}

type OrderResponse struct {
	Order  *Order     `json:"order"`
	Totals TotalsView `json:"totals"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}
