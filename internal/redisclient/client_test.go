package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisForTest starts an in-memory Redis and wraps a client around it
func setupRedisForTest(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClient(rdb), mr
}

func TestClient_GetSetDel(t *testing.T) {
	client, mr := setupRedisForTest(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:key", "valor", time.Minute).Err())

	got, err := client.Get(ctx, "test:key").Result()
	require.NoError(t, err)
	assert.Equal(t, "valor", got)

	assert.True(t, mr.Exists("test:key"))

	require.NoError(t, client.Del(ctx, "test:key").Err())
	_, err = client.Get(ctx, "test:key").Result()
	assert.ErrorIs(t, err, redis.Nil)
}

func TestClient_SetNX(t *testing.T) {
	client, mr := setupRedisForTest(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "test:nx", "a", time.Minute).Result()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "test:nx", "b", time.Minute).Result()
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = client.SetNX(ctx, "test:nx", "c", time.Minute).Result()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_Ping(t *testing.T) {
	client, mr := setupRedisForTest(t)
	assert.NoError(t, client.Ping(context.Background()).Err())

	mr.Close()
	assert.Error(t, client.Ping(context.Background()).Err())
}

func TestClient_Lock(t *testing.T) {
	client, mr := setupRedisForTest(t)
	ctx := context.Background()

	release, err := client.Lock(ctx, "test:lock", "holder-1", time.Minute)
	require.NoError(t, err)

	_, err = client.Lock(ctx, "test:lock", "holder-2", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("test:lock"))

	release2, err := client.Lock(ctx, "test:lock", "holder-2", time.Minute)
	require.NoError(t, err)
	defer release2(ctx)
}

func TestClient_LockReleaseKeepsForeignToken(t *testing.T) {
	client, mr := setupRedisForTest(t)
	ctx := context.Background()

	release, err := client.Lock(ctx, "test:lock", "holder-1", time.Second)
	require.NoError(t, err)

	// The lock expired and someone else took it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock", "holder-2"))

	require.NoError(t, release(ctx))
	got, err := mr.Get("test:lock")
	require.NoError(t, err)
	assert.Equal(t, "holder-2", got)
}
