package orders

import (
	"context"
	"sync"
	"time"

	"github.com/ha3uno/omiseyasan/internal/domain"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
	byKey  map[string]int64
	nextID int64
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byKey:  make(map[string]int64),
		nextID: 1,
		now:    time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, order *domain.Order, idempotencyKey string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if idempotencyKey != "" {
		if _, ok := r.byKey[idempotencyKey]; ok {
			return nil, ErrDuplicateOrder
		}
	}

	created := *order
	created.ID = r.nextID
	created.OrderedAt = r.now()
	created.Timestamp = created.OrderedAt.Format(domain.TimestampLayout)
	created.Items = append([]domain.OrderItem(nil), order.Items...)
	r.nextID++

	r.orders = append(r.orders, created)
	if idempotencyKey != "" {
		r.byKey[idempotencyKey] = created.ID
	}

	out := created
	return &out, nil
}

func (r *MemoryRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, ErrOrderNotFound
	}
	for _, o := range r.orders {
		if o.ID == id {
			out := o
			return &out, nil
		}
	}
	return nil, ErrOrderNotFound
}

// List returns orders newest first.
func (r *MemoryRepository) List(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		out = append(out, r.orders[i])
	}
	return out, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
