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

	"github.com/ha3uno/omiseyasan/internal/config"
	h "github.com/ha3uno/omiseyasan/internal/http"
	"github.com/ha3uno/omiseyasan/internal/orders"
	"github.com/ha3uno/omiseyasan/internal/products"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadAPI()

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync() //nolint:errcheck
	zap.ReplaceGlobals(l)

	ctx := context.Background()

	// Catalog
	productRepo, err := products.NewSQLiteRepository(cfg.ProductsDBPath)
	if err != nil {
		l.Fatal("failed to open products database", zap.Error(err))
	}
	defer productRepo.Close()
	if err := productRepo.RunMigrations(); err != nil {
		l.Fatal("failed to migrate products database", zap.Error(err))
	}

	// Orders
	orderRepo, err := openOrderRepository(ctx, cfg)
	if err != nil {
		l.Fatal("failed to open orders repository", zap.String("driver", cfg.OrdersDBDriver), zap.Error(err))
	}
	defer orderRepo.Close()

	var pub orders.Publisher = orders.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = orders.NewKafkaPublisher(cfg.OrdersTopic, cfg.KafkaBrokers...)
		l.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.OrdersTopic))
	}
	defer pub.Close()

	svc := orders.NewService(orderRepo, pub, l)
	router := h.NewAPIRouter(h.NewProductsHandler(productRepo, l), h.NewAPIOrdersHandler(svc, l), l)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info("storefront API starting", zap.String("port", cfg.HTTPPort), zap.String("orders_db", cfg.OrdersDBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

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

func openOrderRepository(ctx context.Context, cfg *config.API) (orders.Repository, error) {
	switch cfg.OrdersDBDriver {
	case "postgres":
		repo, err := orders.NewPostgresRepository(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	case "memory", "":
		return orders.NewMemoryRepository(), nil
	default:
		return nil, errors.New("unknown orders driver " + cfg.OrdersDBDriver)
	}
}
