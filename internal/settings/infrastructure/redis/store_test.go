package redis

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "phlesk:module:kolab:setting:installing", Key("kolab", "installing"))
}

func TestStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	store := NewStore(client)
	defer client.Del(ctx, Key("phlesk-test", "installing"))

	_, ok, err := store.Get(ctx, "phlesk-test", "installing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "phlesk-test", "installing", "true"))
	value, ok, err := store.Get(ctx, "phlesk-test", "installing")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}
