package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/domain"
)

// ErrInvalidEntry is returned when Add receives a nil entry or one without an id.
var ErrInvalidEntry = errors.New("cart: entry requires an id")

// Outcome distinguishes the two results of Add for user notifications.
type Outcome int

const (
	OutcomeAdded Outcome = iota + 1
	OutcomeQuantityUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeQuantityUpdated:
		return "quantity_updated"
	default:
		return "unknown"
	}
}

// Store holds one session's cart. Every mutation is written through the Persister before returning.
// Storage failures never reach the caller; they are logged and flip the store into degraded mode.
type Store struct {
	mu       sync.Mutex
	items    []Item
	persist  Persister
	logger   *zap.Logger
	degraded bool
	// loadFailed keeps a store whose stored cart could not be read from
	// overwriting it.
	loadFailed bool
}

// New returns an empty store. A nil persister keeps the cart in memory only.
func New(p Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persist: p, logger: logger, degraded: p == nil}
}

// Load rehydrates a store from p. Unreadable or malformed data yields an empty cart.
// When the read itself fails the store stays in memory only and never writes to p.
func Load(ctx context.Context, p Persister, logger *zap.Logger) *Store {
	s := New(p, logger)
	if p == nil {
		return s
	}
	raw, err := p.Load(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Error("cart: load failed; keeping cart in memory", zap.Error(err))
		s.degraded = true
		s.loadFailed = true
		return s
	}
	if len(raw) == 0 {
		return s
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("cart: discarding malformed stored cart", zap.Error(err), zap.Int("bytes", len(raw)))
		return s
	}
	seen := make(map[domain.ID]int, len(items))
	for _, it := range items {
		if it.ID.IsZero() {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		it = normalizeKind(it)
		if idx, ok := seen[it.ID]; ok {
			s.items[idx].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(s.items)
		s.items = append(s.items, it)
	}
	return s
}

// Add inserts the entry with qty, or increments the quantity of an existing item with the same id.
// Other fields of an existing item are never replaced. qty below 1 counts as 1.
func (s *Store) Add(ctx context.Context, e Entry, qty int) (Outcome, error) {
	if e == nil || e.EntryID().IsZero() {
		return 0, ErrInvalidEntry
	}
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexLocked(e.EntryID()); idx >= 0 {
		s.items[idx].Quantity += qty
		s.saveLocked(ctx)
		return OutcomeQuantityUpdated, nil
	}
	it := e.item()
	it.Quantity = qty
	s.items = append(s.items, it)
	s.saveLocked(ctx)
	return OutcomeAdded, nil
}

// Remove deletes the item with id. Absent ids are ignored.
func (s *Store) Remove(ctx context.Context, id domain.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, id)
}

// UpdateQuantity sets the absolute quantity of id. qty <= 0 removes the item.
func (s *Store) UpdateQuantity(ctx context.Context, id domain.ID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		s.removeLocked(ctx, id)
		return
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	s.items[idx].Quantity = qty
	s.saveLocked(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.saveLocked(ctx)
}

// TotalItems sums quantities across items.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums UnitPrice * Quantity across items.
func (s *Store) TotalPrice() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total domain.Money
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

// Contains reports whether an item with id is in the cart.
func (s *Store) Contains(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Item looks up an item by id.
func (s *Store) Item(id domain.ID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.items[idx], true
	}
	return Item{}, false
}

// Items returns a copy of the items in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Empty reports whether the cart has no items.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Degraded reports whether the cart is running memory-only after a storage failure.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) indexLocked(id domain.ID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(ctx context.Context, id domain.ID) {
	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) {
	if s.persist == nil || s.loadFailed {
		return
	}
	items := s.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("cart: encode failed", zap.Error(err))
		s.degraded = true
		return
	}
	if err := s.persist.Save(ctx, raw); err != nil {
		s.logger.Error("cart: persist failed; continuing in memory", zap.Error(err), zap.Int("items", len(items)))
		s.degraded = true
		return
	}
	s.degraded = false
}
