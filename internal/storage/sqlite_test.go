package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T) (*SQLiteStorage, string) {
	path := filepath.Join(t.TempDir(), "profile.db")

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	t.Cleanup(func() { s.Close() })

	return s, path
}

func TestSQLiteStorage_SetGetRemove(t *testing.T) {
	s, _ := setupTestSQLite(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":2}]`)))

	got, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(got))

	require.NoError(t, s.Remove(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	s, path := setupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart", []byte(`[]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestSQLiteStorage_MigrationsAreIdempotent(t *testing.T) {
	s, _ := setupTestSQLite(t)
	assert.NoError(t, s.RunMigrations())
}
