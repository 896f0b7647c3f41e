package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Subscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type SubscribeResponse struct {
	Email      string `json:"email"`
	Subscribed bool   `json:"subscribed"`
	Message    string `json:"message"`
}

type WishlistItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

type WishlistResponse struct {
	Items []WishlistItem `json:"items"`
	Total int            `json:"total"`
	Added bool           `json:"added,omitempty"`
}
