package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ha3uno/omiseyasan/internal/cart"
	"github.com/ha3uno/omiseyasan/internal/clients"
	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

const maxQuantity = 99

// ProductLookup resolves a product id to its current catalog entry.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type CartHandler struct {
	cart    *cart.Store
	catalog ProductLookup
	timeout time.Duration
	maxBody int64
	log     *zap.Logger
}

func NewCartHandler(store *cart.Store, catalog ProductLookup, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:    store,
		catalog: catalog,
		timeout: timeout,
		maxBody: 1 << 20,
		log:     logger.OrNop(log),
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeBody(w, r, h.maxBody, &req) {
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if errors.Is(err, clients.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if err != nil {
		logger.WithTrace(ctx, h.log).Warn("catalog lookup failed",
			zap.Int64("product_id", req.ProductID), zap.Error(err))
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load product")
		return
	}

	if err := h.cart.AddItem(ctx, *product, req.Quantity); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, h.cart.Snapshot())
}

// PUT /api/v1/cart/items/{product_id}
// A quantity below 1 removes the item.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeBody(w, r, h.maxBody, &req) {
		return
	}
	if req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	h.cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.cart.RemoveItem(r.Context(), productID)
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
