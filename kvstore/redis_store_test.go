package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pateldm/go-auth-service/kvstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type record struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func setupRedisStore(t *testing.T) (*kvstore.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return kvstore.NewRedisStore(client), mr
}

func TestRedisStoreSetGet(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "refresh_token:abc", record{UserID: "u1", Token: "abc"}, time.Minute))

	var got record
	found, err := store.Get(ctx, "refresh_token:abc", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, record{UserID: "u1", Token: "abc"}, got)
}

func TestRedisStoreGetAbsentKey(t *testing.T) {
	store, _ := setupRedisStore(t)

	var got record
	found, err := store.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreGetExpiredKey(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	var got string
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreGetDelConsumesKey(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "github_oauth:s1", "user-id", 10*time.Minute))

	var got string
	found, err := store.GetDel(ctx, "github_oauth:s1", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "user-id", got)

	found, err = store.GetDel(ctx, "github_oauth:s1", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	deleted, err := store.Delete(ctx, "k")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = store.Delete(ctx, "k")
	require.NoError(t, err)
	require.False(t, deleted)
}
