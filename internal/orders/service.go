package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	pub  Publisher
	log  *zap.Logger
}

func NewService(repo Repository, pub Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Service{repo: repo, pub: pub, log: logger.OrNop(log)}
}

// CreateOrder validates the request, recomputes every subtotal and the total
// from unit prices, and stores the order. A repeated idempotency key returns
// the order created the first time.
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, domain.NewValidationError("items", domain.ErrMsgOrderNoItems)
	}
	if err := req.ShippingInfo.Validate(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		Items:        make([]domain.OrderItem, 0, len(req.Items)),
		ShippingInfo: req.ShippingInfo.Trimmed(),
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", domain.ErrMsgQuantityPositive)
		}
		if item.UnitPrice < 0 {
			return nil, domain.NewValidationError("price", domain.ErrMsgPriceNegative)
		}
		item.Subtotal = item.UnitPrice * int64(item.Quantity)
		order.TotalAmount += item.Subtotal
		order.Items = append(order.Items, item)
	}

	log := logger.WithTrace(ctx, s.log)

	created, err := s.repo.Create(ctx, order, idempotencyKey)
	if errors.Is(err, ErrDuplicateOrder) {
		log.Info("replayed order request", zap.String("idempotency_key", idempotencyKey))
		return s.repo.FindByIdempotencyKey(ctx, idempotencyKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	log.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int64("total_amount", created.TotalAmount),
		zap.Int("items", len(created.Items)))

	if err := s.pub.PublishOrderCreated(ctx, created); err != nil {
		log.Warn("failed to publish order event", zap.Int64("order_id", created.ID), zap.Error(err))
	}
	return created, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
