package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// Queries are written by hand; the catalog graph is assembled in two extra
// round trips (variations, recipe ingredients) batched over product ids.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository using the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// FullMenu returns active categories in display order with their available
// products embedded. Categories without available products are omitted.
func (r *CatalogRepository) FullMenu(ctx context.Context) (*catalog.Menu, error) {
	const q = `
SELECT id, name, description, icon, display_order, active
FROM categories
WHERE active
ORDER BY display_order, id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.DisplayOrder, &c.Active); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	menu := &catalog.Menu{}
	for i := range categories {
		products, err := r.queryProducts(ctx,
			`WHERE category_id = $1 AND available ORDER BY id`, categories[i].ID)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			continue
		}
		categories[i].Products = products
		menu.Categories = append(menu.Categories, categories[i])
	}
	return menu, nil
}

// ProductsByCategory returns the products of one category, including
// unavailable ones only when requested. An unknown category id yields
// catalog.ErrCategoryNotFound.
func (r *CatalogRepository) ProductsByCategory(ctx context.Context, categoryID int64, includeUnavailable bool) ([]catalog.Product, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "check category")
	}
	if !exists {
		return nil, catalog.ErrCategoryNotFound
	}

	where := `WHERE category_id = $1 AND available ORDER BY id`
	if includeUnavailable {
		where = `WHERE category_id = $1 ORDER BY id`
	}
	return r.queryProducts(ctx, where, categoryID)
}

// Search returns available products whose name or description contains the
// term, case-insensitive.
func (r *CatalogRepository) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	return r.queryProducts(ctx,
		`WHERE available AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%') ORDER BY id`,
		term)
}

// queryProducts runs the product base query with the given WHERE/ORDER tail
// and attaches variations and recipe ingredients in batched lookups.
func (r *CatalogRepository) queryProducts(ctx context.Context, tail string, args ...any) ([]catalog.Product, error) {
	q := `
SELECT id, name, description, image_url, category_id, available
FROM products ` + tail

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.CategoryID, &p.Available); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	if err := r.attachDetails(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachDetails fills Variations and StandardIngredients for the given
// products with one query each over the whole id set.
func (r *CatalogRepository) attachDetails(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]*catalog.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	const variationsQ = `
SELECT id, product_id, label, base_price, available
FROM product_variations
WHERE product_id = ANY($1)
ORDER BY product_id, base_price, id`

	rows, err := r.pool.Query(ctx, variationsQ, ids)
	if err != nil {
		return errors.Wrap(err, "list variations")
	}
	defer rows.Close()

	for rows.Next() {
		var v catalog.Variation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Label, &v.BasePrice, &v.Available); err != nil {
			return errors.Wrap(err, "scan variation")
		}
		if p, ok := index[v.ProductID]; ok {
			p.Variations = append(p.Variations, v)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "list variations")
	}
	rows.Close()

	const recipeQ = `
SELECT pi.product_id, pi.mandatory, i.id, i.name, i.additional_price, i.available
FROM product_ingredients pi
JOIN ingredients i ON i.id = pi.ingredient_id
WHERE pi.product_id = ANY($1)
ORDER BY pi.product_id, i.id`

	rows, err = r.pool.Query(ctx, recipeQ, ids)
	if err != nil {
		return errors.Wrap(err, "list recipe ingredients")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			pi        catalog.ProductIngredient
		)
		if err := rows.Scan(&productID, &pi.Mandatory,
			&pi.Ingredient.ID, &pi.Ingredient.Name, &pi.Ingredient.AdditionalPrice, &pi.Ingredient.Available); err != nil {
			return errors.Wrap(err, "scan recipe ingredient")
		}
		if p, ok := index[productID]; ok {
			p.StandardIngredients = append(p.StandardIngredients, pi)
		}
	}
	return errors.Wrap(rows.Err(), "list recipe ingredients")
}

// UpsertCategory inserts or updates a category keyed by name and returns its id.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, c catalog.Category) (int64, error) {
	const q = `
INSERT INTO categories (name, description, icon, display_order, active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE SET
    description   = EXCLUDED.description,
    icon          = EXCLUDED.icon,
    display_order = EXCLUDED.display_order,
    active        = EXCLUDED.active
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, q, c.Name, c.Description, c.Icon, c.DisplayOrder, c.Active).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upsert category %q", c.Name)
	}
	return id, nil
}

// UpsertIngredient inserts or updates an ingredient keyed by name and returns its id.
func (r *CatalogRepository) UpsertIngredient(ctx context.Context, name string, additionalPrice decimal.Decimal, available bool) (int64, error) {
	const q = `
INSERT INTO ingredients (name, additional_price, available)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET
    additional_price = EXCLUDED.additional_price,
    available        = EXCLUDED.available
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, q, name, additionalPrice, available).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upsert ingredient %q", name)
	}
	return id, nil
}

// UpsertProduct inserts or updates a product keyed by (category, name) and
// returns its id. Variations and recipe links are managed separately.
func (r *CatalogRepository) UpsertProduct(ctx context.Context, p catalog.Product) (int64, error) {
	const q = `
INSERT INTO products (name, description, image_url, category_id, available)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (category_id, name) DO UPDATE SET
    description = EXCLUDED.description,
    image_url   = EXCLUDED.image_url,
    available   = EXCLUDED.available
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.ImageURL, p.CategoryID, p.Available).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "upsert product %q", p.Name)
	}
	return id, nil
}

// UpsertVariation inserts or updates a variation keyed by (product, label).
func (r *CatalogRepository) UpsertVariation(ctx context.Context, v catalog.Variation) error {
	const q = `
INSERT INTO product_variations (product_id, label, base_price, available)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id, label) DO UPDATE SET
    base_price = EXCLUDED.base_price,
    available  = EXCLUDED.available`

	if _, err := r.pool.Exec(ctx, q, v.ProductID, v.Label, v.BasePrice, v.Available); err != nil {
		return errors.Wrapf(err, "upsert variation %q", v.Label)
	}
	return nil
}

// LinkIngredient binds an ingredient to a product's standard recipe.
func (r *CatalogRepository) LinkIngredient(ctx context.Context, productID, ingredientID int64, mandatory bool) error {
	const q = `
INSERT INTO product_ingredients (product_id, ingredient_id, mandatory)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, ingredient_id) DO UPDATE SET mandatory = EXCLUDED.mandatory`

	if _, err := r.pool.Exec(ctx, q, productID, ingredientID, mandatory); err != nil {
		return errors.Wrap(err, "link ingredient")
	}
	return nil
}

// IngredientIDByName resolves an ingredient id, returning pgx.ErrNoRows
// wrapped when the name is unknown.
func (r *CatalogRepository) IngredientIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM ingredients WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errors.Wrapf(err, "ingredient %q not found", name)
		}
		return 0, errors.Wrapf(err, "lookup ingredient %q", name)
	}
	return id, nil
}
