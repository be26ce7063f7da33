package cart

import (
	"github.com/shopspring/decimal"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// LineTotal computes the price of a line item:
//
//	(variation.BasePrice + Σ added ingredient AdditionalPrice) × quantity
//
// Removed standard ingredients never affect the price; they only mark parts of
// the flat-priced base as omitted. Every code path that prices a line item
// must go through this function so the stored total can never drift from the
// selection.
func LineTotal(variation catalog.Variation, added []catalog.Ingredient, quantity int) decimal.Decimal {
	unit := variation.BasePrice
	for _, ing := range added {
		unit = unit.Add(ing.AdditionalPrice)
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
