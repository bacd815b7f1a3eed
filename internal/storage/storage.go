package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("storage key not found")

// Storage is durable key-value storage scoped to a single client profile.
// Consumers define this interface, not the backend implementations.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Options struct {
	Driver string
	// Profile scopes keys on backends shared between clients (redis, mongo).
	Profile string
	// TTL expires values not written for that long on redis and mongo. Zero
	// keeps them until removed.
	TTL time.Duration

	RedisAddr     string
	RedisPassword string

	MongoURI    string
	MongoDBName string

	SQLitePath string
}

// Open connects the backend selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStorage(), nil
	case DriverRedis:
		client, err := ConnectRedis(ctx, opts.RedisAddr, opts.RedisPassword)
		if err != nil {
			return nil, err
		}
		return NewRedisStorage(client, opts.Profile).WithTTL(opts.TTL), nil
	case DriverMongo:
		db, err := ConnectMongoDB(ctx, opts.MongoURI, opts.MongoDBName)
		if err != nil {
			return nil, err
		}
		s := NewMongoStorage(db, opts.Profile).WithTTL(opts.TTL)
		if err := s.CreateIndexes(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		s, err := NewSQLiteStorage(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func profileKey(profile, key string) string {
	if profile == "" {
		profile = "default"
	}
	return fmt.Sprintf("storefront:%s:%s", profile, key)
}
