//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisSessionRepository_Container(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisSessionRepository(client, time.Minute)
	snap := sampleSnapshot(t)

	require.NoError(t, repo.Save(ctx, "live", snap))
	loaded, err := repo.Load(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, snap.Moves, loaded.Moves)
	assert.Equal(t, snap.Scores, loaded.Scores)

	ttl, err := client.TTL(ctx, sessionKey("live")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Load(ctx, "live")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
