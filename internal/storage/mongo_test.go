package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

func setupTestMongo(t *testing.T) *MongoStorage {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	s := NewMongoStorage(db, "alice")
	require.NoError(t, s.CreateIndexes(ctx))
	return s
}

func TestMongoStorage_SetGetRemove(t *testing.T) {
	s := setupTestMongo(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":1,"quantity":2}]`)))

	got, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"quantity":2}]`, string(got))

	require.NoError(t, s.Remove(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Remove(ctx, "cart"))
}

func listIndexes(t *testing.T, s *MongoStorage) map[string]bson.M {
	t.Helper()
	ctx := context.Background()
	cur, err := s.collection.Indexes().List(ctx)
	require.NoError(t, err)

	var specs []bson.M
	require.NoError(t, cur.All(ctx, &specs))
	byName := make(map[string]bson.M, len(specs))
	for _, spec := range specs {
		byName[spec["name"].(string)] = spec
	}
	return byName
}

func TestMongoStorage_NoExpiryByDefault(t *testing.T) {
	s := setupTestMongo(t)
	require.NoError(t, s.Set(context.Background(), "cart", []byte(`[]`)))

	assert.NotContains(t, listIndexes(t, s), "updated_at_ttl")
}

func TestMongoStorage_CreateIndexes_WithTTL(t *testing.T) {
	s := setupTestMongo(t)
	ctx := context.Background()
	expiring := NewMongoStorage(s.collection.Database(), "alice").WithTTL(time.Hour)

	require.NoError(t, expiring.CreateIndexes(ctx))

	idx, ok := listIndexes(t, expiring)["updated_at_ttl"]
	require.True(t, ok)
	assert.EqualValues(t, 3600, idx["expireAfterSeconds"])
}
