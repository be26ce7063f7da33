// Package seed loads catalog definitions into the database. It backs both
// the demo seeder and the bulk importer.
package seed

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
	"github.com/fornero/pizzeria-storefront/internal/storage/postgres"
)

// File mirrors the catalog seed JSON: a shared ingredient pool plus
// categories with nested products referencing ingredients by name.
type File struct {
	Ingredients []Ingredient `json:"ingredients"`
	Categories  []Category   `json:"categories"`
}

// Ingredient is one entry of the shared ingredient pool.
type Ingredient struct {
	Name            string          `json:"name"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
	Available       bool            `json:"available"`
}

// Category is a menu category with its products.
type Category struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	DisplayOrder int       `json:"displayOrder"`
	Active       bool      `json:"active"`
	Products     []Product `json:"products"`
}

// Product is a seeded product with variations and recipe references.
type Product struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Available   bool        `json:"available"`
	Variations  []Variation `json:"variations"`
	Ingredients []Recipe    `json:"ingredients"`
}

// Variation is a seeded product variation.
type Variation struct {
	Label     string          `json:"label"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Available bool            `json:"available"`
}

// Recipe references a pool ingredient by name.
type Recipe struct {
	Name      string `json:"name"`
	Mandatory bool   `json:"mandatory"`
}

// Apply upserts the whole seed file: ingredients first, then categories,
// products, variations, and recipe links. Idempotent; re-running updates in
// place.
func Apply(ctx context.Context, repo *postgres.CatalogRepository, f *File) error {
	ingredientIDs := make(map[string]int64, len(f.Ingredients))
	for _, ing := range f.Ingredients {
		id, err := repo.UpsertIngredient(ctx, ing.Name, ing.AdditionalPrice, ing.Available)
		if err != nil {
			return err
		}
		ingredientIDs[ing.Name] = id
	}
	slog.Info("upserted ingredients", slog.Int("count", len(f.Ingredients)))

	for _, c := range f.Categories {
		categoryID, err := repo.UpsertCategory(ctx, catalog.Category{
			Name:         c.Name,
			Description:  c.Description,
			Icon:         c.Icon,
			DisplayOrder: c.DisplayOrder,
			Active:       c.Active,
		})
		if err != nil {
			return err
		}

		for _, p := range c.Products {
			productID, err := repo.UpsertProduct(ctx, catalog.Product{
				Name:        p.Name,
				Description: p.Description,
				ImageURL:    p.ImageURL,
				CategoryID:  categoryID,
				Available:   p.Available,
			})
			if err != nil {
				return err
			}

			for _, v := range p.Variations {
				if err := repo.UpsertVariation(ctx, catalog.Variation{
					ProductID: productID,
					Label:     v.Label,
					BasePrice: v.BasePrice,
					Available: v.Available,
				}); err != nil {
					return err
				}
			}

			for _, ref := range p.Ingredients {
				ingredientID, ok := ingredientIDs[ref.Name]
				if !ok {
					return errors.Errorf("product %q references unknown ingredient %q", p.Name, ref.Name)
				}
				if err := repo.LinkIngredient(ctx, productID, ingredientID, ref.Mandatory); err != nil {
					return err
				}
			}

			slog.Info("upserted product", slog.String("category", c.Name), slog.String("name", p.Name))
		}
	}
	return nil
}
