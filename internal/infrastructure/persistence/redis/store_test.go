package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nutrismart/planner/internal/ports/outbound"
	"github.com/nutrismart/planner/test/testutils"
)

func TestCircuitBreaker_Transitions(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return clock }

	assert.True(t, cb.AllowRequest())
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.AllowRequest())

	clock = clock.Add(2 * time.Minute)
	assert.True(t, cb.AllowRequest())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	clock = clock.Add(2 * time.Minute)
	require.True(t, cb.AllowRequest())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestStore_OpensBreakerWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStoreWithClient(client, "", zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Get(ctx, "k")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), ErrCircuitOpen)
	assert.ErrorIs(t, store.Delete(ctx, "k"), ErrCircuitOpen)
	assert.Error(t, store.Ping(ctx))
}

func TestStore_Integration(t *testing.T) {
	addr := testutils.SetupRedis(t)

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStoreWithClient(client, "test:", zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, err := store.Get(ctx, "nutrismart-profiles")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "nutrismart-profiles", []byte(`[{"id":"1"}]`)))
	value, err := store.Get(ctx, "nutrismart-profiles")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(value))

	raw, err := client.Get(ctx, "test:nutrismart-profiles").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	require.NoError(t, store.Set(ctx, "nutrismart-profiles", []byte(`[]`)))
	value, err = store.Get(ctx, "nutrismart-profiles")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))

	require.NoError(t, store.Delete(ctx, "nutrismart-profiles"))
	_, err = store.Get(ctx, "nutrismart-profiles")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)
}
