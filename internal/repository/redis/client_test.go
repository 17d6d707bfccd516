package redis

import (
	"testing"
	"time"

	"github.com/iamasit07/connect4-hotseat/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	ctx, client := suite.Redis(t)
	cache := NewRedisCache(client)

	t.Run("set get del", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "table:1", `{"tableId":"1"}`, time.Minute))

		value, err := cache.Get(ctx, "table:1")
		require.NoError(t, err)
		assert.Equal(t, `{"tableId":"1"}`, value)

		ttl, err := client.TTL(ctx, "table:1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))

		require.NoError(t, cache.Del(ctx, "table:1"))
		value, err = cache.Get(ctx, "table:1")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("missing key", func(t *testing.T) {
		value, err := cache.Get(ctx, "table:missing")

		require.NoError(t, err)
		assert.Empty(t, value)
	})
}
