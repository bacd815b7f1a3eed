package cart

import (
	"context"
	"errors"

	"github.com/ha3uno/omiseyasan/internal/storage"
)

// FailingStorage wraps a storage and fails the configured operations
type FailingStorage struct {
	storage.Storage
	GetErr    error
	SetErr    error
	RemoveErr error

	SetCalls    int
	RemoveCalls int
}

func (f *FailingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.Storage.Get(ctx, key)
}

func (f *FailingStorage) Set(ctx context.Context, key string, value []byte) error {
	f.SetCalls++
	if f.SetErr != nil {
		return f.SetErr
	}
	return f.Storage.Set(ctx, key, value)
}

func (f *FailingStorage) Remove(ctx context.Context, key string) error {
	f.RemoveCalls++
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.Storage.Remove(ctx, key)
}

var errQuota = errors.New("quota exceeded")
