package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/ha3uno/omiseyasan/pkg/circuitbreaker"
	"github.com/ha3uno/omiseyasan/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type BreakerSettings struct {
	MaxFailures uint32        // consecutive failures before the breaker opens
	OpenTimeout time.Duration // how long it stays open before probing
}

type OrderClient struct {
	c       *Client
	breaker *gobreaker.CircuitBreaker[*domain.Order]
	log     *zap.Logger
}

func NewOrderClient(c *Client, bs BreakerSettings, log *zap.Logger) *OrderClient {
	log = logger.OrNop(log)
	cb := circuitbreaker.New[*domain.Order](circuitbreaker.Settings{
		Name:         c.Name,
		MaxFailures:  bs.MaxFailures,
		OpenTimeout:  bs.OpenTimeout,
		IsSuccessful: isHealthy,
	}, log)

	return &OrderClient{c: c, breaker: cb, log: log}
}

// isHealthy treats a rejected order as a healthy service.
func isHealthy(err error) bool {
	var te *domain.TransportError
	if errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500 {
		return true
	}
	return err == nil
}

// CreateOrder posts the order once under req.IdempotencyKey, or a fresh key
// when the request carries none. Every failure comes back as a
// *domain.TransportError; the caller decides whether to retry.
func (oc *OrderClient) CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("encode order: %w", err)}
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	order, err := oc.breaker.Execute(func() (*domain.Order, error) {
		return oc.createOrder(ctx, key, body)
	})
	if circuitbreaker.IsOpen(err) {
		return nil, &domain.TransportError{Message: "order service is temporarily unavailable", Err: err}
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (oc *OrderClient) createOrder(ctx context.Context, key string, body []byte) (*domain.Order, error) {
	headers := http.Header{}
	headers.Set(HeaderIdempotencyKey, key)

	resp, err := oc.c.Do(ctx, http.MethodPost, "/api/orders", "", bytes.NewReader(body), headers)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		te := transportError(resp)
		logger.WithTrace(ctx, oc.log).Warn("order service rejected order",
			zap.Int("status", te.StatusCode), zap.String("message", te.Message))
		return nil, te
	}

	var order domain.Order
	if err := decodeJSON(resp, &order); err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	return &order, nil
}

// ListOrders returns the order history, newest first.
func (oc *OrderClient) ListOrders(ctx context.Context) ([]domain.Order, error) {
	resp, err := oc.c.Do(ctx, http.MethodGet, "/api/orders", "", nil, nil)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, transportError(resp)
	}

	orders := []domain.Order{}
	if err := decodeJSON(resp, &orders); err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	return orders, nil
}
