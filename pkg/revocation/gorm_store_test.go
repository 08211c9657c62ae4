package revocation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbookai/platform/pkg/db"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	store := NewGormStore(gdb)
	require.NoError(t, store.Migrate())
	return store
}

func countRows(t *testing.T, s *GormStore) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB.Model(&RevokedToken{}).Count(&n).Error)
	return n
}

func mustRevoke(t *testing.T, s Store, tokenID string, exp time.Time) {
	t.Helper()
	_, err := s.Revoke(context.Background(), tokenID, exp)
	require.NoError(t, err)
}

func TestGormStore_RevokeAndLookup(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	mustRevoke(t, store, "token-a", time.Now().Add(time.Hour))

	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGormStore_StoresFingerprintOnly(t *testing.T) {
	store := newTestGormStore(t)
	mustRevoke(t, store, "0d4f6c9e-jti", time.Now().Add(time.Hour))

	var row RevokedToken
	require.NoError(t, store.DB.First(&row).Error)
	assert.Equal(t, Fingerprint("0d4f6c9e-jti"), row.TokenHash)
	assert.NotContains(t, row.TokenHash, "0d4f6c9e-jti")
}

func TestGormStore_RevokeIsIdempotent(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	created, err := store.Revoke(ctx, "token-a", exp)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Revoke(ctx, "token-a", exp)
	require.NoError(t, err)
	assert.False(t, created)

	assert.EqualValues(t, 1, countRows(t, store))
}

func TestGormStore_ConcurrentRevokeOfSameToken(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Revoke(ctx, "token-a", exp)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, created)
	assert.EqualValues(t, 1, countRows(t, store))
}

func TestGormStore_PurgeExpired(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	mustRevoke(t, store, "past", now.Add(-time.Minute))
	mustRevoke(t, store, "boundary", now)
	mustRevoke(t, store, "future", now.Add(time.Minute))

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	revoked, err := store.IsRevoked(ctx, "future")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "past")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPurger_RunOnce(t *testing.T) {
	store := newTestGormStore(t)

	mustRevoke(t, store, "old", time.Now().Add(-time.Hour))
	mustRevoke(t, store, "live", time.Now().Add(time.Hour))

	NewPurger(store, nil).RunOnce()

	assert.EqualValues(t, 1, countRows(t, store))
}

func TestPurger_StartRejectsBadSchedule(t *testing.T) {
	store := newTestGormStore(t)
	p := NewPurger(store, nil)

	require.Error(t, p.Start("every now and then"))
}

func TestPurger_StartAndStop(t *testing.T) {
	store := newTestGormStore(t)
	p := NewPurger(store, nil)

	require.NoError(t, p.Start(""))
	p.Stop()
}
