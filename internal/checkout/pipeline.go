package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/ha3uno/omiseyasan/internal/cart"
	d "github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

// Cart is the part of the cart store the pipeline reads and clears.
type Cart interface {
	Snapshot() cart.Snapshot
	Clear(ctx context.Context)
}

// OrderSubmitter creates orders in the external order service.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req *d.OrderRequest) (*d.Order, error)
}

// Pipeline turns the current cart and shipping details into an order. One
// pipeline serves one checkout visit; the cart is cleared only after the
// order service confirms the order.
type Pipeline struct {
	mu      sync.Mutex
	status  d.CheckoutStatus
	cart    Cart
	orders  OrderSubmitter
	log     *zap.Logger
	lastErr error
	order   *d.Order

	// key identifies keyed, the last request sent. A retry of the same
	// request reuses it so the order service can replay a committed order.
	key   string
	keyed *d.OrderRequest
}

// Start enters the Editing state. It refuses with ErrEmptyCart when the cart
// has nothing in it; callers should send the user back to browsing.
func Start(c Cart, orders OrderSubmitter, log *zap.Logger) (*Pipeline, error) {
	if c.Snapshot().TotalQuantity <= 0 {
		return nil, ErrEmptyCart
	}
	return &Pipeline{
		status: d.CheckoutStatusEditing,
		cart:   c,
		orders: orders,
		log:    logger.OrNop(log),
	}, nil
}

func (p *Pipeline) Status() d.CheckoutStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err returns the error of the last failed submission, if any.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Order returns the confirmed order once the pipeline has succeeded.
func (p *Pipeline) Order() *d.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order
}

// Edit moves a failed pipeline back to Editing.
func (p *Pipeline) Edit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == d.CheckoutStatusEditing {
		return nil
	}
	return p.transition(d.CheckoutStatusEditing)
}

func (p *Pipeline) transition(to d.CheckoutStatus) error {
	if !d.CanTransitionTo(p.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.status, to)
	}
	p.log.Debug("checkout status changed", zap.Stringer("from", p.status), zap.Stringer("to", to))
	p.status = to
	return nil
}

// Submit sends the order exactly once. While a submission is in flight a
// second call returns ErrSubmissionInProgress without contacting the order
// service. Validation errors leave the pipeline in Editing; order service
// failures leave it in Failed with the cart untouched. Resubmitting an
// unchanged order reuses the idempotency key of the previous attempt.
func (p *Pipeline) Submit(ctx context.Context, info d.ShippingInfo) (*d.Order, error) {
	p.mu.Lock()
	switch p.status {
	case d.CheckoutStatusSubmitting:
		p.mu.Unlock()
		return nil, ErrSubmissionInProgress
	case d.CheckoutStatusSucceeded:
		p.mu.Unlock()
		return nil, ErrAlreadyCompleted
	}

	req, err := p.buildRequest(info)
	if err != nil {
		if p.status == d.CheckoutStatusFailed {
			_ = p.transition(d.CheckoutStatusEditing)
		}
		p.lastErr = err
		p.mu.Unlock()
		return nil, err
	}

	if err := p.transition(d.CheckoutStatusSubmitting); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if p.keyed == nil || !sameOrder(p.keyed, req) {
		p.key = uuid.NewString()
		p.keyed = req
	}
	req.IdempotencyKey = p.key
	p.lastErr = nil
	p.mu.Unlock()

	log := logger.WithTrace(ctx, p.log)
	log.Info("submitting order",
		zap.Int("items", len(req.Items)),
		zap.Int64("total_amount", req.TotalAmount))

	order, err := p.orders.CreateOrder(ctx, req)
	if err == nil && order == nil {
		err = errors.New("order service returned no order")
	}

	if err != nil {
		var te *d.TransportError
		if !errors.As(err, &te) {
			err = &d.TransportError{Err: err}
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		p.lastErr = err
		_ = p.transition(d.CheckoutStatusFailed)
		log.Warn("order submission failed", zap.Error(err))
		return nil, err
	}

	// Still Submitting here, so no other call can touch the pipeline. The
	// cart is cleared outside p.mu because its subscribers may read the
	// pipeline.
	p.cart.Clear(context.WithoutCancel(ctx))

	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.transition(d.CheckoutStatusSucceeded)
	p.order = order
	log.Info("order confirmed", zap.Int64("order_id", order.ID), zap.String("timestamp", order.Timestamp))
	return order, nil
}

// buildRequest validates the shipping info and freezes the cart into an
// order request. Must be called with p.mu held.
func (p *Pipeline) buildRequest(info d.ShippingInfo) (*d.OrderRequest, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}

	snap := p.cart.Snapshot()
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}

	req := &d.OrderRequest{
		Items:        make([]d.OrderItem, 0, len(snap.Items)),
		TotalAmount:  snap.TotalPrice,
		ShippingInfo: info.Trimmed(),
	}
	for _, item := range snap.Items {
		req.Items = append(req.Items, item.OrderItem())
	}

	if req.SubtotalSum() != req.TotalAmount {
		return nil, fmt.Errorf("%w: total %d, subtotals %d", errTotalMismatch, req.TotalAmount, req.SubtotalSum())
	}
	return req, nil
}

// sameOrder reports whether two requests would create the same order.
func sameOrder(a, b *d.OrderRequest) bool {
	return a.TotalAmount == b.TotalAmount &&
		a.ShippingInfo == b.ShippingInfo &&
		slices.Equal(a.Items, b.Items)
}
