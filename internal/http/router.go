package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/ha3uno/omiseyasan/internal/middleware"
	"go.uber.org/zap"
)

type GatewayHandlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
}

func baseRouter(log *zap.Logger, timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	if timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// NewGatewayRouter serves the cart and checkout API of the storefront.
func NewGatewayRouter(h GatewayHandlers, log *zap.Logger, timeout time.Duration) http.Handler {
	r := baseRouter(log, timeout)
	r.Use(chimw.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Catalog.ListProducts)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.Checkout.GetCheckout)
			r.Post("/", h.Checkout.StartCheckout)
			r.Post("/submit", h.Checkout.SubmitOrder)
		})
		r.Get("/orders", h.Orders.ListOrders)
	})

	return r
}

// NewAPIRouter serves the demo catalog and order endpoints.
func NewAPIRouter(products *ProductsHandler, orders *APIOrdersHandler, log *zap.Logger) http.Handler {
	r := baseRouter(log, 0)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", products.ListProducts)
		r.Get("/products/{id}", products.GetProduct)
		r.Get("/categories", products.ListCategories)
		r.Get("/orders", orders.ListOrders)
		r.Post("/orders", orders.CreateOrder)
	})

	return r
}
