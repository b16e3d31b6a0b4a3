package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogpilecache/core/pkg/backend"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewFromClient(client, "test")
}

func TestBackend_GetMiss(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	val, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestBackend_SetGet(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "key", []byte("value"), time.Minute))

	val, err := b.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}

func TestBackend_Delete(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "key", []byte("value"), time.Minute))

	result, err := b.Delete(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, backend.Deleted, result)

	result, err = b.Delete(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, backend.Missing, result)
}

func TestBackend_Lock(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	status, err := b.Lock(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, backend.Acquired, status)

	status, err = b.Lock(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, backend.AlreadyHeld, status)
}

func TestBackend_Namespacing(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "shared-key", []byte("v1"), time.Minute))
	assert.Equal(t, "test:shared-key", b.prefixKey("shared-key"))
}
