// Package cart implements the storefront cart: priced line items, the store
// that owns them, and the pricing rules applied when a customized product is
// added.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// MaxNotesLength bounds the free-text notes on a line item. Enforced by the
// presentation layer, exported so every surface agrees on the limit.
const MaxNotesLength = 200

// Selection is the input for adding an item to the cart: a fully customized
// product choice. It deliberately carries no price — the store alone computes
// line totals, so callers cannot desynchronize price from selection.
type Selection struct {
	Product            catalog.Product
	Variation          catalog.Variation
	Quantity           int
	AddedIngredients   []catalog.Ingredient
	RemovedIngredients []int64
	Notes              string
}

// LineItem is one priced entry in the cart. Product and Variation are
// snapshots taken at add time; later catalog changes do not affect stored
// items. Total is derived from the pricing formula and recomputed on every
// mutation, never set directly.
type LineItem struct {
	ID                 string
	Product            catalog.Product
	Variation          catalog.Variation
	Quantity           int
	AddedIngredients   []catalog.Ingredient
	RemovedIngredients []int64
	Notes              string
	Total              decimal.Decimal
}
