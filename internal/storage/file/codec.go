package file

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/fornero/pizzeria-storefront/internal/cart"
	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// errSchemaVersion marks a snapshot written by an unknown schema revision.
var errSchemaVersion = errors.New("unsupported cart snapshot version")

// The snapshot layout is a versioned envelope:
//
//	{"version": 1, "items": [ ... line items in insertion order ... ]}
//
// Monetary values are encoded as strings to keep decimal precision exact.
// Unknown fields are skipped on decode so the codec stays forward-tolerant;
// a wrong or missing version is treated as corruption.

func encodeSnapshot(items []cart.LineItem) []byte {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(SchemaVersion) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range items {
					encodeLineItem(e, &items[i])
				}
			})
		})
	})
	return e.Bytes()
}

func encodeLineItem(e *jx.Encoder, it *cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(it.ID) })
		e.Field("product", func(e *jx.Encoder) { encodeProduct(e, &it.Product) })
		e.Field("variation", func(e *jx.Encoder) { encodeVariation(e, it.Variation) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("addedIngredients", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, ing := range it.AddedIngredients {
					encodeIngredient(e, ing)
				}
			})
		})
		e.Field("removedIngredients", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, id := range it.RemovedIngredients {
					e.Int64(id)
				}
			})
		})
		if it.Notes != "" {
			e.Field("notes", func(e *jx.Encoder) { e.Str(it.Notes) })
		}
		e.Field("totalPrice", func(e *jx.Encoder) { e.Str(it.Total.String()) })
	})
}

func encodeProduct(e *jx.Encoder, p *catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		if p.Description != "" {
			e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		}
		if p.ImageURL != "" {
			e.Field("imageUrl", func(e *jx.Encoder) { e.Str(p.ImageURL) })
		}
		e.Field("categoryId", func(e *jx.Encoder) { e.Int64(p.CategoryID) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(p.Available) })
		e.Field("variations", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range p.Variations {
					encodeVariation(e, v)
				}
			})
		})
		e.Field("standardIngredients", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, pi := range p.StandardIngredients {
					e.Obj(func(e *jx.Encoder) {
						e.Field("ingredient", func(e *jx.Encoder) { encodeIngredient(e, pi.Ingredient) })
						e.Field("mandatory", func(e *jx.Encoder) { e.Bool(pi.Mandatory) })
					})
				}
			})
		})
	})
}

func encodeVariation(e *jx.Encoder, v catalog.Variation) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(v.ID) })
		e.Field("productId", func(e *jx.Encoder) { e.Int64(v.ProductID) })
		e.Field("label", func(e *jx.Encoder) { e.Str(v.Label) })
		e.Field("basePrice", func(e *jx.Encoder) { e.Str(v.BasePrice.String()) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(v.Available) })
	})
}

func encodeIngredient(e *jx.Encoder, ing catalog.Ingredient) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(ing.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(ing.Name) })
		e.Field("additionalPrice", func(e *jx.Encoder) { e.Str(ing.AdditionalPrice.String()) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(ing.Available) })
	})
}

func decodeSnapshot(data []byte) ([]cart.LineItem, error) {
	d := jx.DecodeBytes(data)

	var (
		version    = -1
		items      []cart.LineItem
		itemsError error
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "version":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "version")
			}
			version = v
			return nil
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeLineItem(d)
				if err != nil {
					itemsError = err
					return err
				}
				items = append(items, it)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		if itemsError != nil {
			return nil, itemsError
		}
		return nil, errors.Wrap(err, "decode snapshot")
	}

	if version != SchemaVersion {
		return nil, errors.Wrapf(errSchemaVersion, "got %d, want %d", version, SchemaVersion)
	}
	return items, nil
}

func decodeLineItem(d *jx.Decoder) (cart.LineItem, error) {
	var it cart.LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			it.ID, err = d.Str()
		case "product":
			it.Product, err = decodeProduct(d)
		case "variation":
			it.Variation, err = decodeVariation(d)
		case "quantity":
			it.Quantity, err = d.Int()
		case "addedIngredients":
			err = d.Arr(func(d *jx.Decoder) error {
				ing, err := decodeIngredient(d)
				if err != nil {
					return err
				}
				it.AddedIngredients = append(it.AddedIngredients, ing)
				return nil
			})
		case "removedIngredients":
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Int64()
				if err != nil {
					return err
				}
				it.RemovedIngredients = append(it.RemovedIngredients, id)
				return nil
			})
		case "notes":
			it.Notes, err = d.Str()
		case "totalPrice":
			it.Total, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return cart.LineItem{}, errors.Wrap(err, "line item")
	}
	if it.ID == "" {
		return cart.LineItem{}, errors.New("line item missing id")
	}
	if it.Quantity < 1 {
		return cart.LineItem{}, errors.New("line item quantity below 1")
	}

	// The stored total is advisory. Deduplicate extras and recompute from the
	// pricing formula so a hand-edited snapshot cannot smuggle in a total
	// that disagrees with the selection.
	it.AddedIngredients = dedupeByID(it.AddedIngredients)
	it.Total = cart.LineTotal(it.Variation, it.AddedIngredients, it.Quantity)
	return it, nil
}

func dedupeByID(in []catalog.Ingredient) []catalog.Ingredient {
	if len(in) < 2 {
		return in
	}
	seen := make(map[int64]struct{}, len(in))
	out := in[:0]
	for _, ing := range in {
		if _, ok := seen[ing.ID]; ok {
			continue
		}
		seen[ing.ID] = struct{}{}
		out = append(out, ing)
	}
	return out
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "imageUrl":
			p.ImageURL, err = d.Str()
		case "categoryId":
			p.CategoryID, err = d.Int64()
		case "available":
			p.Available, err = d.Bool()
		case "variations":
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := decodeVariation(d)
				if err != nil {
					return err
				}
				p.Variations = append(p.Variations, v)
				return nil
			})
		case "standardIngredients":
			err = d.Arr(func(d *jx.Decoder) error {
				var pi catalog.ProductIngredient
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "ingredient":
						pi.Ingredient, err = decodeIngredient(d)
					case "mandatory":
						pi.Mandatory, err = d.Bool()
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				p.StandardIngredients = append(p.StandardIngredients, pi)
				return nil
			})
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return catalog.Product{}, errors.Wrap(err, "product")
	}
	return p, nil
}

func decodeVariation(d *jx.Decoder) (catalog.Variation, error) {
	var v catalog.Variation
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			v.ID, err = d.Int64()
		case "productId":
			v.ProductID, err = d.Int64()
		case "label":
			v.Label, err = d.Str()
		case "basePrice":
			v.BasePrice, err = decodeDecimal(d)
		case "available":
			v.Available, err = d.Bool()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return catalog.Variation{}, errors.Wrap(err, "variation")
	}
	return v, nil
}

func decodeIngredient(d *jx.Decoder) (catalog.Ingredient, error) {
	var ing catalog.Ingredient
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			ing.ID, err = d.Int64()
		case "name":
			ing.Name, err = d.Str()
		case "additionalPrice":
			ing.AdditionalPrice, err = decodeDecimal(d)
		case "available":
			ing.Available, err = d.Bool()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return catalog.Ingredient{}, errors.Wrap(err, "ingredient")
	}
	return ing, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	s, err := d.Str()
	if err != nil {
		return decimal.Decimal{}, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse decimal")
	}
	return v, nil
}
