package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ha3uno/omiseyasan/internal/cart"
	"github.com/ha3uno/omiseyasan/internal/clients"
	"github.com/ha3uno/omiseyasan/internal/config"
	h "github.com/ha3uno/omiseyasan/internal/http"
	"github.com/ha3uno/omiseyasan/internal/storage"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadGateway()

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync() //nolint:errcheck
	zap.ReplaceGlobals(l)

	ctx := context.Background()

	// Durable cart storage
	st, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		l.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer st.Close()
	l.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	store := cart.NewStore(ctx, st, cart.WithKey(cfg.StorageKey), cart.WithLogger(l))
	store.Subscribe(func(s cart.Snapshot) {
		l.Debug("cart changed", zap.Int("total_quantity", s.TotalQuantity), zap.Int64("total_price", s.TotalPrice))
	})

	// Collaborators
	httpClient := clients.NewHTTPClient(cfg.RequestTimeout)
	catalogBase, err := clients.NewClient("catalog", cfg.CatalogURL, httpClient)
	if err != nil {
		l.Fatal("invalid catalog config", zap.Error(err))
	}
	ordersBase, err := clients.NewClient("orders", cfg.OrdersURL, httpClient)
	if err != nil {
		l.Fatal("invalid orders config", zap.Error(err))
	}
	catalog := clients.NewCatalogClient(catalogBase)
	orders := clients.NewOrderClient(ordersBase, clients.BreakerSettings{
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, l)

	router := h.NewGatewayRouter(h.GatewayHandlers{
		Catalog:  h.NewCatalogHandler(catalog, cfg.RequestTimeout, l),
		Cart:     h.NewCartHandler(store, catalog, cfg.RequestTimeout, l),
		Checkout: h.NewCheckoutHandler(store, orders, cfg.RequestTimeout, l),
		Orders:   h.NewOrdersHandler(orders, cfg.RequestTimeout, l),
	}, l, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront-gateway"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("gateway starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}

	l.Info("server exited")
}
