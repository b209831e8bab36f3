package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewWithClient(rdb, "test"), mr
}

func TestKeyJoinsPrefix(t *testing.T) {
	client, _ := newTestClient(t)
	require.Equal(t, "test:cart:cart_1", client.Key("cart", "cart_1"))
	require.Equal(t, "test:carts", client.Key("carts", " "))
	require.Equal(t, "acp:x", NewWithClient(client.Redis(), "").Key("x"))
}

func TestJSONRoundTripWithTTL(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	type record struct {
		ID    string `json:"id"`
		Total int64  `json:"total"`
	}
	key := client.Key("record", "r1")
	require.NoError(t, client.SetJSON(ctx, key, record{ID: "r1", Total: 1500}, time.Hour))
	require.Equal(t, time.Hour, mr.TTL(key))

	var got record
	found, err := client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1500), got.Total)

	mr.FastForward(2 * time.Hour)
	found, err = client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestLockerSerializesHolders(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	locker := NewLocker(client, time.Minute, 0)

	release, err := locker.Acquire(ctx, "cart:cart_1")
	require.NoError(t, err)
	require.True(t, mr.Exists("test:lock:cart:cart_1"))

	_, err = locker.Acquire(ctx, "cart:cart_1")
	require.True(t, errors.Is(err, ErrLockNotAcquired))

	other, err := locker.Acquire(ctx, "cart:cart_2")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	require.False(t, mr.Exists("test:lock:cart:cart_1"))

	again, err := locker.Acquire(ctx, "cart:cart_1")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestLockerReleaseKeepsForeignToken(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	locker := NewLocker(client, time.Second, 0)

	release, err := locker.Acquire(ctx, "cart:cart_1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	taken, err := locker.Acquire(ctx, "cart:cart_1")
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	require.True(t, mr.Exists("test:lock:cart:cart_1"))
	require.NoError(t, taken(ctx))
}
