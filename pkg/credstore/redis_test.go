package credstore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStoreWithClient(client, "concierge-test")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s := setupRedisStore(t)

	_, ok := s.Get(KeyAccessToken)
	assert.False(t, ok)

	s.Set(KeyAccessToken, "tok-a")
	v, ok := s.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "tok-a", v)

	s.Remove(KeyAccessToken)
	_, ok = s.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestRedisStore_NamespacesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	a := NewRedisStoreWithClient(client, "install-a")
	b := NewRedisStoreWithClient(client, "install-b")

	a.Set(KeyAccessToken, "token-a")

	_, ok := b.Get(KeyAccessToken)
	assert.False(t, ok, "stores with different namespaces must not share keys")

	v, ok := a.Get(KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "token-a", v)
}

func TestRedisStore_UnavailableBackendDegradesToAbsent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisStoreWithClient(client, "concierge-test")
	s.Set(KeyAccessToken, "tok")

	mr.Close()

	// No panics, no errors: just absence.
	_, ok := s.Get(KeyAccessToken)
	assert.False(t, ok)
	s.Set(KeyRefreshToken, "r")
	s.Remove(KeyAccessToken)
}
