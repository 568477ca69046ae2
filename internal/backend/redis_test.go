package backend

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisBackendWithClient(client, "test:"), mr
}

func TestRedisBackend(t *testing.T) {
	b, _ := setupTestRedis(t)
	defer b.Close()

	exerciseBackend(t, b)
}

func TestRedisBackendUsesPrefixedSets(t *testing.T) {
	b, mr := setupTestRedis(t)
	defer b.Close()

	require.NoError(t, b.Save(context.Background(), "[int]", "[1]"))
	require.NoError(t, b.Save(context.Background(), "[int]", "[1]"))

	assert.True(t, mr.Exists("test:[int]"))
	members, err := mr.Members("test:[int]")
	require.NoError(t, err)
	assert.Equal(t, []string{"[1]"}, members)
}

func TestRedisBackendServerDown(t *testing.T) {
	b, mr := setupTestRedis(t)
	defer b.Close()
	mr.Close()

	err := b.Save(context.Background(), "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis save error")

	_, err = b.Fetch(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis fetch error")
}

func TestNewRedisBackendWithConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	config := DefaultRedisConfig()
	config.Addr = mr.Addr()
	b, err := NewRedisBackendWithConfig(config)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Save(context.Background(), "k", "v"))
	assert.True(t, mr.Exists("exampledb:k"))
}

func TestNewRedisBackendWithConfigUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisBackendWithConfig(RedisConfig{Addr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}
