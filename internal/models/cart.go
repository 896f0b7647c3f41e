package models

import (
	"github.com/shopspring/decimal"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 10
)

type Metal string

const (
	MetalWhiteGold  Metal = "white-gold"
	MetalYellowGold Metal = "yellow-gold"
	MetalRoseGold   Metal = "rose-gold"
	MetalPlatinum   Metal = "platinum"
	MetalSilver     Metal = "silver"
)

var metalNames = map[Metal]string{
	MetalWhiteGold:  "White Gold",
	MetalYellowGold: "Yellow Gold",
	MetalRoseGold:   "Rose Gold",
	MetalPlatinum:   "Platinum",
	MetalSilver:     "Sterling Silver",
}

// DisplayName falls back to the raw value for finishes without a label.
func (m Metal) DisplayName() string {
	if name, ok := metalNames[m]; ok {
		return name
	}

	return string(m)
}

// Variant distinguishes otherwise identical product lines. Both fields are optional.
type Variant struct {
	Metal Metal  `json:"metal,omitempty"`
	Size  string `json:"size,omitempty"`
}

// LineKey is the merge identity of a cart line.
type LineKey struct {
	ProductID int64
	Metal     Metal
	Size      string
}

type CartLineItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image,omitempty"`
	Variant
	Quantity int `json:"quantity"`
}

func (l CartLineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Metal: l.Metal, Size: l.Size}
}

func (l CartLineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []CartLineItem `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the badge count: the sum of all line quantities.
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}

	return count
}

type AddItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Metal     Metal  `json:"metal,omitempty" validate:"omitempty,oneof=white-gold yellow-gold rose-gold platinum silver"`
	Size      string `json:"size,omitempty" validate:"omitempty,max=10"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=0"`
}

type UpdateQuantityRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Metal     Metal  `json:"metal,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

type LineRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Metal     Metal  `json:"metal,omitempty"`
	Size      string `json:"size,omitempty"`
}

type CartResponse struct {
	Lines     []CartLineItem `json:"lines"`
	ItemCount int            `json:"item_count"`
	Totals    TotalsView     `json:"totals"`
	Promo     *PromoCode     `json:"promo,omitempty"`
	Warning   string         `json:"warning,omitempty"`
}
