package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// Storage persists the ordered line-item list across sessions.
//
// Load is called once, before any mutation. Save is called after every
// mutation with the full current list. A Save error must not corrupt
// previously persisted state.
type Storage interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Store is the sole owner and mutator of the cart's line items. Construct it
// with NewStore, call Load once, then mutate through AddItem, UpdateQuantity,
// RemoveItem and Clear. Derived totals are recomputed on read; there are no
// cached counters that could drift.
//
// Persistence is best-effort: a failed save is logged and the in-memory state
// stays authoritative for the current session.
type Store struct {
	storage Storage
	lg      *zap.Logger

	mu    sync.Mutex
	items []LineItem
}

// NewStore creates an empty cart store. Call Load before the first read.
func NewStore(storage Storage, lg *zap.Logger) *Store {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Store{storage: storage, lg: lg}
}

// Load hydrates the store from persisted state. A corrupted or unreadable
// snapshot downgrades to an empty cart with a diagnostic log; it never blocks
// initialization.
func (s *Store) Load(ctx context.Context) {
	items, err := s.storage.Load(ctx)
	if err != nil {
		s.lg.Warn("cart snapshot unreadable, starting empty", zap.Error(err))
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// AddItem appends a new line item built from the selection. The total is
// computed by LineTotal; the selection carries no price. Added ingredients
// are deduplicated by id, first occurrence wins. Equal selections are never
// merged: adding the same customization twice yields two distinct items.
//
// The store does not re-check variation or ingredient availability; keeping
// unavailable options unselectable is the presentation layer's job.
func (s *Store) AddItem(ctx context.Context, sel Selection) LineItem {
	qty := sel.Quantity
	if qty < 1 {
		qty = 1
	}

	added := dedupeIngredients(sel.AddedIngredients)

	item := LineItem{
		ID:                 uuid.New().String(),
		Product:            sel.Product,
		Variation:          sel.Variation,
		Quantity:           qty,
		AddedIngredients:   added,
		RemovedIngredients: sel.RemovedIngredients,
		Notes:              sel.Notes,
		Total:              LineTotal(sel.Variation, added, qty),
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.persistLocked(ctx)
	s.mu.Unlock()

	return item
}

// UpdateQuantity sets the quantity of the item with the given id and
// recomputes its total from the pricing formula. A quantity of zero or less
// removes the item. An unknown id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, itemID)
		return
	}

	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ID != itemID {
			continue
		}
		it := &s.items[i]
		it.Quantity = quantity
		// Recompute from the formula rather than scaling the old total,
		// so rounding can never accumulate.
		it.Total = LineTotal(it.Variation, it.AddedIngredients, quantity)
		changed = true
		break
	}
	if changed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
}

// RemoveItem removes the line item with the given id. Removing an item that
// is already gone is a no-op, so racing removals from the UI are harmless.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked(ctx)
			break
		}
	}
	s.mu.Unlock()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// Items returns the line items in insertion order. The returned slice is a
// copy; callers must not rely on it reflecting later mutations.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItemCount is the sum of all quantities across line items.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Subtotal is the sum of all line-item totals.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Total)
	}
	return total
}

// persistLocked saves the current item list. It must be called with s.mu
// held, which serializes saves with mutations so a save can never write a
// snapshot older than the latest mutation. Failures are logged and swallowed:
// the in-memory cart stays the source of truth for the session even when it
// cannot be carried over to the next one.
func (s *Store) persistLocked(ctx context.Context) {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)

	if err := s.storage.Save(ctx, items); err != nil {
		s.lg.Warn("cart snapshot save failed", zap.Error(err), zap.Int("items", len(items)))
	}
}

// dedupeIngredients removes duplicate ingredients by id, keeping the first
// occurrence and the original relative order.
func dedupeIngredients(in []catalog.Ingredient) []catalog.Ingredient {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(in))
	out := make([]catalog.Ingredient, 0, len(in))
	for _, ing := range in {
		if _, ok := seen[ing.ID]; ok {
			continue
		}
		seen[ing.ID] = struct{}{}
		out = append(out, ing)
	}
	return out
}
