// Package catalog holds the read-only menu data served by the catalog API
// and consumed by the storefront. The cart stores snapshots of these types;
// it never holds live references back into the catalog.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrCategoryNotFound is returned when a requested category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// MinSearchTermLength is the minimum number of characters a search term must
// have before a query is issued. Shorter terms are rejected by the server and
// short-circuited by the client.
const MinSearchTermLength = 2

// Ingredient is a single ingredient, either bundled into a product or
// selectable as a paid extra.
type Ingredient struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
	Available       bool            `json:"available"`
}

// ProductIngredient binds an ingredient to a product as part of its standard
// recipe. Mandatory ingredients cannot be removed by the customer.
type ProductIngredient struct {
	Ingredient Ingredient `json:"ingredient"`
	Mandatory  bool       `json:"mandatory"`
}

// Variation is a purchasable size/option of a product with its own base price.
// Every product has at least one variation; exactly one is selected per cart
// line item.
type Variation struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Label     string          `json:"label"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Available bool            `json:"available"`
}

// Product is a menu item with its variations and standard recipe.
type Product struct {
	ID                  int64               `json:"id"`
	Name                string              `json:"name"`
	Description         string              `json:"description,omitempty"`
	ImageURL            string              `json:"imageUrl,omitempty"`
	CategoryID          int64               `json:"categoryId"`
	Available           bool                `json:"available"`
	Variations          []Variation         `json:"variations"`
	StandardIngredients []ProductIngredient `json:"standardIngredients"`
}

// Category groups products for display. DisplayOrder controls menu ordering.
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	Active       bool      `json:"active"`
	Products     []Product `json:"products"`
}

// Menu is the full catalog: active categories in display order, each with its
// available products embedded.
type Menu struct {
	Categories []Category `json:"categories"`
}

// Repository defines read operations over the catalog.
type Repository interface {
	// FullMenu returns active categories in display order, each containing
	// only available products. Categories without available products are
	// omitted.
	FullMenu(ctx context.Context) (*Menu, error)
	// ProductsByCategory returns the products of one category. Unavailable
	// products are included only when includeUnavailable is set.
	ProductsByCategory(ctx context.Context, categoryID int64, includeUnavailable bool) ([]Product, error)
	// Search returns available products whose name or description matches
	// the term (case-insensitive substring).
	Search(ctx context.Context, term string) ([]Product, error)
}
