package checkout

import (
	"context"
	"sync"

	"github.com/ha3uno/omiseyasan/internal/cart"
	d "github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/internal/storage"
)

// MockOrderSubmitter implements OrderSubmitter for testing
type MockOrderSubmitter struct {
	mu       sync.Mutex
	Order    *d.Order
	Err      error
	Requests []*d.OrderRequest // Captures every request sent
	// Release, when set, blocks CreateOrder until it is closed
	Release chan struct{}
	Entered chan struct{}
}

func (m *MockOrderSubmitter) CreateOrder(_ context.Context, req *d.OrderRequest) (*d.Order, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Entered != nil {
		m.Entered <- struct{}{}
	}
	if m.Release != nil {
		<-m.Release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	order := *m.Order
	order.Items = req.Items
	order.TotalAmount = req.TotalAmount
	order.ShippingInfo = req.ShippingInfo
	return &order, nil
}

func (m *MockOrderSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockOrderSubmitter) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

var (
	plush = d.Product{ID: 1, Name: "Plush", Price: 1200, ImageURL: "plush.jpg"}
	mug   = d.Product{ID: 2, Name: "Mug", Price: 600}
)

// newTestCart creates a cart store holding a 2-item cart totaling 3000
func newTestCart() *cart.Store {
	ctx := context.Background()
	store := cart.NewStore(ctx, storage.NewMemoryStorage())
	_ = store.AddItem(ctx, plush, 2)
	_ = store.AddItem(ctx, mug, 1)
	return store
}

func confirmedOrder() *d.Order {
	return &d.Order{ID: 42, Timestamp: "2026-10-17 10:00:00"}
}
