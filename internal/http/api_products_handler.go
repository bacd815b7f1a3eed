package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ha3uno/omiseyasan/internal/products"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

type ProductsHandler struct {
	repo products.Repository
	log  *zap.Logger
}

func NewProductsHandler(repo products.Repository, log *zap.Logger) *ProductsHandler {
	return &ProductsHandler{repo: repo, log: logger.OrNop(log)}
}

// GET /api/products?category=
func (h *ProductsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		logger.WithTrace(r.Context(), h.log).Error("failed to list products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch products")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GET /api/products/{id}
func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "invalid product ID")
		return
	}

	p, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, products.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		logger.WithTrace(r.Context(), h.log).Error("failed to get product", zap.Int64("product_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch product")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// GET /api/categories
func (h *ProductsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.Categories(r.Context())
	if err != nil {
		logger.WithTrace(r.Context(), h.log).Error("failed to list categories", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
