package orders

import (
	"context"
	"sync"

	"github.com/ha3uno/omiseyasan/internal/domain"
)

// MockPublisher records published events
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.Order
	Err       error
}

func (m *MockPublisher) PublishOrderCreated(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, order)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// FailingRepository fails every write
type FailingRepository struct {
	*MemoryRepository
	Err error
}

func (r *FailingRepository) Create(context.Context, *domain.Order, string) (*domain.Order, error) {
	return nil, r.Err
}
