package models

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryRings     Category = "rings"
	CategoryNecklaces Category = "necklaces"
	CategoryEarrings  Category = "earrings"
	CategoryBracelets Category = "bracelets"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryRings, CategoryNecklaces, CategoryEarrings, CategoryBracelets:
		return true
	}

	return false
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    Category        `json:"category"`
	Rating      int             `json:"rating"`
	Description string          `json:"description"`
}

// PriceRange is one of the shop page price buckets.
type PriceRange string

const (
	PriceUpTo100   PriceRange = "0-100"
	Price100To500  PriceRange = "100-500"
	Price500To1000 PriceRange = "500-1000"
	PriceOver1000  PriceRange = "1000+"
)

type SortOrder string

const (
	SortFeatured     SortOrder = "featured"
	SortPriceLowHigh SortOrder = "price-low"
	SortPriceHighLow SortOrder = "price-high"
	SortName         SortOrder = "name"
	SortNewest       SortOrder = "newest"
)

type ProductFilter struct {
	Categories  []Category   `json:"categories,omitempty" validate:"omitempty,dive,oneof=rings necklaces earrings bracelets"`
	PriceRanges []PriceRange `json:"price_ranges,omitempty" validate:"omitempty,dive,oneof=0-100 100-500 500-1000 1000+"`
	Sort        SortOrder    `json:"sort,omitempty" validate:"omitempty,oneof=featured price-low price-high name newest"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
