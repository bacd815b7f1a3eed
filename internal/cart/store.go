package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/internal/storage"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "cart"

// Snapshot is a consistent copy of the cart with its derived totals.
type Snapshot struct {
	Items         []domain.LineItem `json:"items"`
	TotalQuantity int               `json:"totalQuantity"`
	TotalPrice    int64             `json:"totalPrice"`
}

// Store is the single source of truth for cart contents. Every mutation is
// written to storage before the method returns. Storage failures are logged
// and never surfaced.
type Store struct {
	mu      sync.Mutex
	items   []domain.LineItem // first added first
	storage storage.Storage
	key     string
	log     *zap.Logger

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(l) }
}

// NewStore loads the persisted cart. Absent or unreadable data yields an
// empty cart; a corrupt payload is also removed from storage.
func NewStore(ctx context.Context, st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		key:     DefaultKey,
		log:     zap.NewNop(),
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.LineItem {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("cart load failed, starting empty",
			zap.Error(&domain.PersistenceError{Op: "get", Key: s.key, Err: err}))
		return nil
	}

	var stored []domain.LineItem
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("corrupt cart payload, starting empty",
			zap.Error(&domain.PersistenceError{Op: "decode", Key: s.key, Err: err}))
		if errRemove := s.storage.Remove(ctx, s.key); errRemove != nil {
			s.log.Warn("failed to remove corrupt cart",
				zap.Error(&domain.PersistenceError{Op: "remove", Key: s.key, Err: errRemove}))
		}
		return nil
	}
	return sanitize(stored)
}

// sanitize drops entries that break the cart invariants and merges duplicate
// product ids, keeping the position of the first occurrence.
func sanitize(stored []domain.LineItem) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(stored))
	for _, item := range stored {
		if item.Quantity < 1 || item.UnitPrice < 0 {
			continue
		}
		if i := indexOf(items, item.ProductID); i >= 0 {
			items[i].Quantity += item.Quantity
			continue
		}
		items = append(items, item)
	}
	return items
}

func indexOf(items []domain.LineItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem increments the quantity of an existing item or inserts a new one
// with a snapshot of the product's name, price and image.
func (s *Store) AddItem(ctx context.Context, p domain.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}

	s.mutate(ctx, func() bool {
		if i := indexOf(s.items, p.ID); i >= 0 {
			s.items[i].Quantity += quantity
			return true
		}
		s.items = append(s.items, domain.NewLineItem(p, quantity))
		return true
	})
	s.log.Debug("item added", zap.Int64("product_id", p.ID), zap.Int("quantity", quantity))
	return nil
}

// UpdateQuantity sets the quantity exactly. A quantity below 1 removes the
// item. Unknown product ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, productID)
		return
	}
	s.mutate(ctx, func() bool {
		i := indexOf(s.items, productID)
		if i < 0 {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	s.mutate(ctx, func() bool {
		i := indexOf(s.items, productID)
		if i < 0 {
			return false
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	})
}

// Clear empties the cart. Called after an order is confirmed.
func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func() bool {
		s.items = nil
		return true
	})
}

// mutate applies fn under the lock and, when fn reports a change, persists
// the whole collection and notifies subscribers. The write ignores ctx
// cancellation: a change that reached memory always reaches storage.
func (s *Store) mutate(ctx context.Context, fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.persist(context.WithoutCancel(ctx))
	snap := s.snapshot()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) persist(ctx context.Context) {
	if len(s.items) == 0 {
		if err := s.storage.Remove(ctx, s.key); err != nil {
			s.log.Warn("cart persist failed",
				zap.Error(&domain.PersistenceError{Op: "remove", Key: s.key, Err: err}))
		}
		return
	}

	data, err := json.Marshal(s.items)
	if err != nil {
		s.log.Warn("cart persist failed",
			zap.Error(&domain.PersistenceError{Op: "encode", Key: s.key, Err: err}))
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.log.Warn("cart persist failed",
			zap.Error(&domain.PersistenceError{Op: "set", Key: s.key, Err: err}))
	}
}

func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LineItem(nil), s.items...)
}

func (s *Store) Item(productID int64) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, productID); i >= 0 {
		return s.items[i], true
	}
	return domain.LineItem{}, false
}

func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalQuantity(s.items)
}

func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Items:         append([]domain.LineItem{}, s.items...),
		TotalQuantity: totalQuantity(s.items),
		TotalPrice:    totalPrice(s.items),
	}
}

func totalQuantity(items []domain.LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalPrice(items []domain.LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// synchronously on the mutating goroutine after the store lock is released,
// so it may read the store but blocks the caller until it returns. The
// returned func unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
