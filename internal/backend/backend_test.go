package backend

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the behavior every backend must share
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	values, err := b.Fetch(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, b.Save(ctx, "k", "[1,2,3]"))
	require.NoError(t, b.Save(ctx, "k", "[1,2,3]"))
	require.NoError(t, b.Save(ctx, "k", `"AP8="`))
	require.NoError(t, b.Save(ctx, "other", "[1,2,3]"))

	values, err = b.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"[1,2,3]", `"AP8="`}, values)

	values, err = b.Fetch(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []string{"[1,2,3]"}, values)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestMemoryBackendKeepsSaveOrder(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	for _, v := range []string{"c", "a", "b", "a"} {
		require.NoError(t, b.Save(ctx, "k", v))
	}

	values, err := b.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, values)

	// callers may not mutate stored state through the result
	values[0] = "z"
	again, err := b.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "c", again[0])
}

func TestMemoryBackendCancelledContext(t *testing.T) {
	b := NewMemoryBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Save(ctx, "k", "v"), context.Canceled)
	_, err := b.Fetch(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryBackendConcurrentSaves(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Save(ctx, "k", "same"))
		}()
	}
	wg.Wait()

	values, err := b.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"same"}, values)
}

func TestOpen(t *testing.T) {
	t.Run("default is memory", func(t *testing.T) {
		b, err := Open(Config{})
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &MemoryBackend{}, b)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "examples.db")
		b, err := Open(Config{Type: TypeSQLite, Driver: DriverSQLite, Path: path, Table: "custom_examples"})
		require.NoError(t, err)
		defer b.Close()

		require.IsType(t, &SQLBackend{}, b)
		assert.Equal(t, "custom_examples", b.(*SQLBackend).TableName())
		exerciseBackend(t, b)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		b, err := Open(Config{Type: TypeRedis, Redis: RedisConfig{Addr: mr.Addr(), Prefix: "t:"}})
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &RedisBackend{}, b)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name   string
			config Config
			errMsg string
		}{
			{"sqlite without path", Config{Type: TypeSQLite}, "requires a path"},
			{"postgres without url", Config{Type: TypePostgres}, "requires a url"},
			{"unknown type", Config{Type: "cassandra"}, "unknown backend type"},
			{"bad table name", Config{Type: TypeSQLite, Driver: DriverSQLite, Path: ":memory:", Table: "x; DROP"}, "invalid table name"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Open(tt.config)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			})
		}
	})
}
