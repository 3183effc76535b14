// Package cart holds the in-memory line-item list backing the
// storefront cart, persisted through durable local storage on every
// mutation.
package cart

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/notify"
	"zapateria-storefront/internal/pricing"
)

// StorageKey is the fixed key the serialized cart lives under.
const StorageKey = "zapateria-cart-items"

type kvStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Store owns the ordered line-item list for the session. All access is
// expected from a single goroutine; persistence failures degrade the
// store to in-memory only and are logged, never surfaced to the caller.
type Store struct {
	kv       kvStore
	logger   *log.Logger
	notifier notify.Notifier
	items    []domain.LineItem
}

// NewStore loads any previously persisted cart from kv. A stored value
// that is not a JSON list is discarded entirely; list entries without a
// string key are dropped.
func NewStore(kv kvStore, logger *log.Logger, notifier notify.Notifier) *Store {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	s := &Store{kv: kv, logger: logger, notifier: notifier}
	s.items = s.loadStored()
	return s
}

func (s *Store) loadStored() []domain.LineItem {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logf("failed to read stored cart: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	var parsed []domain.LineItem
	if err := json.Unmarshal(raw, &parsed); err != nil {
		s.logf("failed to parse stored cart, starting empty: %v", err)
		return nil
	}
	items := parsed[:0]
	for _, item := range parsed {
		if item.Key == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// Item is the product-variant snapshot handed to Add; key and quantity
// are derived by the store itself.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Currency  string
	Image     string
	Size      *float64
	Color     string
	Stock     int
}

// Add merges the variant into the cart. An existing line with the same
// key has its quantity raised by quantity, clamped to [1, stock]; excess
// is dropped silently. A new line starts at quantity clamped to
// [1, stock]. Emits a confirmation notice either way.
func (s *Store) Add(item Item, quantity int) {
	key := LineKey(item.ProductID, item.Size, item.Color)

	merged := false
	for i := range s.items {
		if s.items[i].Key != key {
			continue
		}
		updated := s.items[i].Quantity + quantity
		if updated > s.items[i].Stock {
			updated = s.items[i].Stock
		}
		if updated < 1 {
			updated = 1
		}
		s.items[i].Quantity = updated
		merged = true
		break
	}
	if !merged {
		safe := quantity
		if safe < 1 {
			safe = 1
		}
		if safe > item.Stock {
			safe = item.Stock
		}
		s.items = append(s.items, domain.LineItem{
			Key:       key,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Currency:  item.Currency,
			Image:     item.Image,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  safe,
			Stock:     item.Stock,
		})
	}
	s.persist()

	desc := item.Name
	if item.Size != nil {
		desc = fmt.Sprintf("%s (size %s)", item.Name, formatSize(*item.Size))
	}
	s.notifier.Success("Added to cart", desc)
}

// UpdateQuantity sets the line's quantity to max(1, min(quantity,
// stock)). Lines whose quantity ends up at zero or below are removed;
// with the floor of 1 that branch is currently unreachable, which is
// kept as-is deliberately.
func (s *Store) UpdateQuantity(key string, quantity int) {
	next := s.items[:0]
	for _, item := range s.items {
		if item.Key == key {
			q := quantity
			if q > item.Stock {
				q = item.Stock
			}
			if q < 1 {
				q = 1
			}
			item.Quantity = q
		}
		if item.Quantity > 0 {
			next = append(next, item)
		}
	}
	s.items = next
	s.persist()
}

// Remove deletes the line unconditionally; an absent key is a no-op.
func (s *Store) Remove(key string) {
	next := s.items[:0]
	for _, item := range s.items {
		if item.Key != key {
			next = append(next, item)
		}
	}
	s.items = next
	s.persist()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.items = nil
	s.persist()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Summary recomputes the derived totals for the current contents.
func (s *Store) Summary() pricing.Summary {
	return pricing.Summarize(s.items)
}

func (s *Store) persist() {
	data, err := json.Marshal(s.itemsOrEmpty())
	if err != nil {
		s.logf("failed to serialize cart: %v", err)
		return
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		s.logf("failed to persist cart, continuing in memory: %v", err)
	}
}

func (s *Store) itemsOrEmpty() []domain.LineItem {
	if s.items == nil {
		return []domain.LineItem{}
	}
	return s.items
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
