package orders

import (
	"context"
	"errors"

	"github.com/ha3uno/omiseyasan/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this idempotency key already exists")
)

// Repository persists orders with their items atomically. An empty
// idempotency key never collides.
type Repository interface {
	Create(ctx context.Context, order *domain.Order, idempotencyKey string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Close() error
}
