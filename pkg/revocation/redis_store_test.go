package revocation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbookai/platform/pkg/cache"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is required for redis tests")
	}
	client, err := cache.NewRedisClient(context.Background(), cache.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client)
}

func TestRedisStore_RevokeAndLookup(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()
	token := "tok-" + uuid.NewString()

	revoked, err := store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)

	created, err := store.Revoke(ctx, token, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.Revoke(ctx, token, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, created)

	revoked, err = store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := store.Client.TTL(ctx, redisKey(token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisStore_SkipsAlreadyExpiredTokens(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()
	token := "tok-" + uuid.NewString()

	created, err := store.Revoke(ctx, token, time.Now().Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, created)

	revoked, err := store.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisStore_PurgeIsNoop(t *testing.T) {
	store := NewRedisStore(nil)
	n, err := store.PurgeExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
