package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.uber.org/zap"
)

// Catalog is the catalog service as the gateway sees it.
type Catalog interface {
	ProductLookup
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
}

type CatalogHandler struct {
	catalog Catalog
	timeout time.Duration
	log     *zap.Logger
}

func NewCatalogHandler(catalog Catalog, timeout time.Duration, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
		log:     logger.OrNop(log),
	}
}

// GET /api/v1/products?category=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		logger.WithTrace(ctx, h.log).Warn("catalog unavailable", zap.Error(err))
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "failed to load products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}
