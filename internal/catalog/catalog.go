package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/shopspring/decimal"
)

const (
	unsplashRing     = "https://images.unsplash.com/photo-1605100804763-247f67b3557e?ixlib=rb-1.2.1&auto=format&fit=crop&w=1350&q=80"
	unsplashEarrings = "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?ixlib=rb-1.2.1&auto=format&fit=crop&w=1350&q=80"
	unsplashNecklace = "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?ixlib=rb-1.2.1&auto=format&fit=crop&w=1350&q=80"
	unsplashBracelet = "https://images.unsplash.com/photo-1588444650700-6c7f0c89d36b?ixlib=rb-1.2.1&auto=format&fit=crop&w=1350&q=80"
)

var (
	hundred     = decimal.NewFromInt(100)
	fiveHundred = decimal.NewFromInt(500)
	thousand    = decimal.NewFromInt(1000)
)

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	products []models.Product
	byID     map[int64]models.Product
}

func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[int64]models.Product, len(products)),
	}

	for _, p := range products {
		c.byID[p.ID] = p
	}

	return c
}

// Default returns the storefront's eight seed products.
func Default() *Catalog {
	return New(SeedProducts())
}

func SeedProducts() []models.Product {
	return []models.Product{
		{
			ID: 1, Name: "Diamond Solitaire Ring", Price: decimal.RequireFromString("1299.99"),
			Image: unsplashRing, Category: models.CategoryRings, Rating: 5,
			Description: "A timeless solitaire ring featuring a brilliant cut diamond set in 18k white gold. Perfect for engagements and special occasions.",
		},
		{
			ID: 2, Name: "Pearl Drop Earrings", Price: decimal.RequireFromString("299.99"),
			Image: unsplashEarrings, Category: models.CategoryEarrings, Rating: 4,
			Description: "Elegant pearl drop earrings with sterling silver settings. These classic earrings add sophistication to any outfit.",
		},
		{
			ID: 3, Name: "Gold Chain Necklace", Price: decimal.RequireFromString("599.99"),
			Image: unsplashNecklace, Category: models.CategoryNecklaces, Rating: 5,
			Description: "A delicate 14k gold chain necklace with a subtle clasp. This versatile piece can be worn alone or layered with other necklaces.",
		},
		{
			ID: 4, Name: "Silver Bangle Bracelet", Price: decimal.RequireFromString("199.99"),
			Image: unsplashBracelet, Category: models.CategoryBracelets, Rating: 4,
			Description: "A sleek sterling silver bangle bracelet with a modern design. This piece makes a perfect gift for any occasion.",
		},
		{
			ID: 5, Name: "Emerald Cut Diamond Ring", Price: decimal.RequireFromString("1899.99"),
			Image: unsplashRing, Category: models.CategoryRings, Rating: 5,
			Description: "A stunning emerald cut diamond set in a vintage-inspired platinum band. This ring showcases the diamond's clarity and brilliance.",
		},
		{
			ID: 6, Name: "Rose Gold Hoop Earrings", Price: decimal.RequireFromString("149.99"),
			Image: unsplashEarrings, Category: models.CategoryEarrings, Rating: 4,
			Description: "Modern rose gold hoop earrings with a polished finish. These lightweight hoops are comfortable for all-day wear.",
		},
		{
			ID: 7, Name: "Sapphire Pendant Necklace", Price: decimal.RequireFromString("799.99"),
			Image: unsplashNecklace, Category: models.CategoryNecklaces, Rating: 5,
			Description: "A beautiful blue sapphire pendant suspended from a delicate gold chain. This piece makes a statement while remaining elegant.",
		},
		{
			ID: 8, Name: "Tennis Bracelet", Price: decimal.RequireFromString("1299.99"),
			Image: unsplashBracelet, Category: models.CategoryBracelets, Rating: 5,
			Description: "A classic tennis bracelet featuring a continuous line of brilliant cut diamonds set in white gold. The ultimate in luxury and elegance.",
		},
	}
}

func (c *Catalog) Get(id int64) (models.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// List applies category and price filters (each OR-ed within itself, AND-ed together), then sorts.
func (c *Catalog) List(filter models.ProductFilter) []models.Product {

	result := make([]models.Product, 0, len(c.products))

	for _, p := range c.products {
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, p.Category) {
			continue
		}

		if len(filter.PriceRanges) > 0 && !slices.ContainsFunc(filter.PriceRanges, func(r models.PriceRange) bool {
			return InPriceRange(p.Price, r)
		}) {
			continue
		}

		result = append(result, p)
	}

	sortProducts(result, filter.Sort)

	return result
}

func InPriceRange(price decimal.Decimal, r models.PriceRange) bool {
	switch r {
	case models.PriceUpTo100:
		return price.LessThanOrEqual(hundred)
	case models.Price100To500:
		return price.GreaterThan(hundred) && price.LessThanOrEqual(fiveHundred)
	case models.Price500To1000:
		return price.GreaterThan(fiveHundred) && price.LessThanOrEqual(thousand)
	case models.PriceOver1000:
		return price.GreaterThan(thousand)
	}

	return false
}

func sortProducts(products []models.Product, order models.SortOrder) {
	switch order {
	case models.SortPriceLowHigh:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price.LessThan(products[j].Price) })
	case models.SortPriceHighLow:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price.GreaterThan(products[j].Price) })
	case models.SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case models.SortNewest:
		sort.SliceStable(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	default:
		// featured keeps catalog order
	}
}
