package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ha3uno/omiseyasan/internal/clients"
	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type APIOrdersHandler struct {
	svc OrderService
	log *zap.Logger
}

func NewAPIOrdersHandler(svc OrderService, log *zap.Logger) *APIOrdersHandler {
	return &APIOrdersHandler{svc: svc, log: logger.OrNop(log)}
}

// POST /api/orders
func (h *APIOrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), req, r.Header.Get(clients.HeaderIdempotencyKey))
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Code: "invalid_order", Details: ve.Field})
			return
		}
		logger.WithTrace(r.Context(), h.log).Error("failed to create order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// GET /api/orders
func (h *APIOrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		logger.WithTrace(r.Context(), h.log).Error("failed to list orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}
