package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, map[string]string{KeyToken: "abc"}))
	require.NoError(t, s.Set(ctx, map[string]string{KeyToken: "def", KeyRole: RoleUser}))
	require.NoError(t, s.Set(ctx, nil))

	role, ok, err := s.Get(ctx, KeyRole)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, RoleUser, role)

	v, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", v)

	require.NoError(t, s.Delete(ctx, KeyToken, KeyRole, "missing"))
	_, ok, err = s.Get(ctx, KeyRole)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestSQLiteStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	exerciseStorage(t, s)

	require.NoError(t, s.Set(context.Background(), map[string]string{KeyToken: "persisted"}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	prefix := "storefront-test:" + t.Name() + ":"
	s := NewRedisStorage(client, prefix)
	defer s.Close()

	exerciseStorage(t, s)

	require.NoError(t, s.Set(context.Background(), map[string]string{KeyToken: "shared"}))
	assert.Equal(t, int64(1), client.Exists(context.Background(), prefix+KeyToken).Val())
	require.NoError(t, s.Delete(context.Background(), KeyToken))
}
