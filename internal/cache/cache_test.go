package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLists(t *testing.T) (*Lists, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLists(client, time.Minute), srv
}

func TestListsRoundTrip(t *testing.T) {
	lists, srv := newLists(t)
	ctx := context.Background()

	_, ok, err := lists.IDs(ctx, "friends:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lists.SetIDs(ctx, "friends:1", []int64{3, 1, 2}))

	ids, ok, err := lists.IDs(ctx, "friends:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	assert.Equal(t, time.Minute, srv.TTL(keyPrefix+"friends:1"))
}

func TestListsEmptyListIsAHit(t *testing.T) {
	lists, _ := newLists(t)
	ctx := context.Background()

	require.NoError(t, lists.SetIDs(ctx, "groups:5", nil))

	ids, ok, err := lists.IDs(ctx, "groups:5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ids)
}

func TestListsExpire(t *testing.T) {
	lists, srv := newLists(t)
	ctx := context.Background()

	require.NoError(t, lists.SetIDs(ctx, "friends:1", []int64{1}))
	srv.FastForward(2 * time.Minute)

	_, ok, err := lists.IDs(ctx, "friends:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListsCorruptedValue(t *testing.T) {
	lists, srv := newLists(t)

	require.NoError(t, srv.Set(keyPrefix+"friends:1", "not json"))

	_, _, err := lists.IDs(context.Background(), "friends:1")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	lists, err := Connect(context.Background(), &Config{Enabled: true, Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { lists.Close() })
	assert.Equal(t, defaultTTL, lists.ttl)

	addr := srv.Addr()
	srv.Close()
	_, err = Connect(context.Background(), &Config{Enabled: true, Addr: addr})
	assert.Error(t, err)
}
