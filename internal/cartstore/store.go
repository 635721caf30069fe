// Package cartstore holds the per-session shopping cart: the line items, their
// mirror in a persisted slot, the derived totals and the change notifications
// that dependent views subscribe to.
package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/repository/slot"
)

// LineRef addresses an existing line. CustomizationRef selects a customized
// line; when empty only the uncustomized line with the same id, size and color
// matches.
type LineRef struct {
	ProductID        string
	Size             string
	Color            string
	CustomizationRef string
}

func (r LineRef) matches(item domain.LineItem) bool {
	if item.ProductID != r.ProductID || item.Size != r.Size || item.Color != r.Color {
		return false
	}
	if r.CustomizationRef == "" {
		return !item.Customized()
	}
	return item.CustomizationRef() == r.CustomizationRef
}

// Totals is the aggregate read model of a cart.
type Totals struct {
	ItemCount int   `json:"itemCount"`
	CartCount int   `json:"cartCount"`
	CartTotal int64 `json:"cartTotalCents"`
}

// Snapshot is a copy of the cart handed to readers and to checkout.
type Snapshot struct {
	Items []domain.LineItem `json:"items"`
	Totals
}

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
	ChangeCleared ChangeKind = "cleared"
)

// Change is emitted to subscribers after every mutation.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Totals Totals     `json:"totals"`
	At     time.Time  `json:"at"`
}

// Store is the authoritative cart of one session. All operations are
// serialized; persistence happens inside the mutating call.
type Store struct {
	mu     sync.Mutex
	repo   slot.Repository
	key    string
	logger zerolog.Logger

	items  []domain.LineItem
	totals Totals

	subs    map[int]chan Change
	nextSub int
	closed  bool

	newRef func() string
	now    func() time.Time
}

// Open reads the slot once and returns the store. A missing or unreadable slot
// yields an empty cart.
func Open(ctx context.Context, repo slot.Repository, key string, logger zerolog.Logger) *Store {
	s := &Store{
		repo:   repo,
		key:    key,
		logger: logger.With().Str("component", "cartstore").Str("slot", key).Logger(),
		items:  []domain.LineItem{},
		subs:   make(map[int]chan Change),
		newRef: uuid.NewString,
		now:    time.Now,
	}
	s.items = s.load(ctx)
	s.recompute()
	return s
}

func (s *Store) load(ctx context.Context) []domain.LineItem {
	data, err := s.repo.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, slot.ErrEmpty) {
			s.logger.Debug().Msg("no persisted cart, starting empty")
		} else {
			s.logger.Warn().Err(err).Msg("load persisted cart failed, starting empty")
		}
		return []domain.LineItem{}
	}
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn().Err(err).Msg("persisted cart is not valid json, starting empty")
		return []domain.LineItem{}
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	return items
}

// AddToCart merges item into a line with the same identity key or appends it.
// A customized item without a reference gets a fresh one.
func (s *Store) AddToCart(ctx context.Context, item domain.LineItem) {
	item = cloneItem(item)
	if item.Customization != nil && item.Customization.Ref == "" {
		item.Customization.Ref = s.newRef()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].SameLine(item) {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	s.commit(ctx, ChangeAdded)
}

// RemoveFromCart drops the referenced line. Unknown lines are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, ref LineRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if ref.matches(s.items[i]) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.commit(ctx, ChangeRemoved)
			return
		}
	}
}

// UpdateQuantity sets the referenced line's quantity, clamped to at least 1.
// Unknown lines are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, ref LineRef, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if ref.matches(s.items[i]) {
			s.items[i].Quantity = quantity
			s.commit(ctx, ChangeUpdated)
			return
		}
	}
}

// ClearCart empties the cart and erases the persisted slot.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []domain.LineItem{}
	s.recompute()
	if err := s.repo.Delete(ctx, s.key); err != nil {
		s.logger.Error().Err(err).Msg("erase persisted cart failed")
	}
	s.notify(ChangeCleared)
}

// Items returns a copy of the current lines in cart order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals.ItemCount
}

func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals.CartCount
}

func (s *Store) CartTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals.CartTotal
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Snapshot returns the lines and totals read under a single lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Items: s.copyItems(), Totals: s.totals}
}

// Subscribe registers for change notifications. The channel holds at most one
// pending change; a slow reader only ever sees the latest one. Call cancel to
// unsubscribe.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Change, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Subscribers reports the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription. The cart itself stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// commit must be called with s.mu held.
func (s *Store) commit(ctx context.Context, kind ChangeKind) {
	s.recompute()
	s.persist(ctx)
	s.notify(kind)
}

func (s *Store) recompute() {
	var t Totals
	t.ItemCount = len(s.items)
	for _, item := range s.items {
		t.CartCount += item.Quantity
		t.CartTotal += item.TotalCents()
	}
	s.totals = t
}

func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode cart failed")
		return
	}
	if err := s.repo.Save(ctx, s.key, data); err != nil {
		s.logger.Error().Err(err).Int("items", len(s.items)).Msg("persist cart failed, keeping in-memory state")
	}
}

func (s *Store) notify(kind ChangeKind) {
	c := Change{Kind: kind, Totals: s.totals, At: s.now().UTC()}
	for _, ch := range s.subs {
		select {
		case ch <- c:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c:
		default:
		}
	}
}

func (s *Store) copyItems() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = cloneItem(item)
	}
	return out
}

func cloneItem(item domain.LineItem) domain.LineItem {
	if item.Customization != nil {
		c := *item.Customization
		c.Placements = append([]domain.Placement(nil), c.Placements...)
		item.Customization = &c
	}
	return item
}
