package http

import (
	"context"
	"sync"

	"github.com/ha3uno/omiseyasan/internal/clients"
	"github.com/ha3uno/omiseyasan/internal/domain"
)

// CatalogMock implements Catalog
type CatalogMock struct {
	products map[int64]domain.Product
	err      error
}

func (c CatalogMock) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, clients.ErrProductNotFound
	}
	return &p, nil
}

func (c CatalogMock) ListProducts(_ context.Context, category string) ([]domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.Product
	for id := int64(1); id <= int64(len(c.products)); id++ {
		p, ok := c.products[id]
		if ok && (category == "" || p.Category == category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// OrdersMock implements checkout.OrderSubmitter and OrderHistory
type OrdersMock struct {
	mu      sync.Mutex
	err     error
	created []domain.Order
	calls   int
}

func (o *OrdersMock) CreateOrder(_ context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	order := domain.Order{
		ID:           int64(len(o.created) + 1),
		Timestamp:    "2026-10-17 10:00:00",
		Items:        req.Items,
		TotalAmount:  req.TotalAmount,
		ShippingInfo: req.ShippingInfo,
	}
	o.created = append(o.created, order)
	return &order, nil
}

func (o *OrdersMock) ListOrders(context.Context) ([]domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	return append([]domain.Order(nil), o.created...), nil
}

func (o *OrdersMock) setErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}
