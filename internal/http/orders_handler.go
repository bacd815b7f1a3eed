package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

type OrderHistory interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderHistory
	timeout time.Duration
	log     *zap.Logger
}

func NewOrdersHandler(orders OrderHistory, timeout time.Duration, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     logger.OrNop(log),
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		logger.WithTrace(ctx, h.log).Warn("order history unavailable", zap.Error(err))
		respondError(w, http.StatusBadGateway, "orders_unavailable", err.Error())
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}
