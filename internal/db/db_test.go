package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectCreatesSchema(t *testing.T) {
	ctx := context.Background()
	pool, err := Connect(ctx, "")
	require.NoError(t, err)
	defer pool.Close()

	var tables []string
	require.NoError(t, pool.SelectContext(ctx, &tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'games'"))
	assert.Equal(t, []string{"games"}, tables)

	// Running the schema twice is harmless.
	assert.NoError(t, InitializeDB(ctx, pool))
}

func TestNewRedisClient(t *testing.T) {
	mini := miniredis.RunT(t)
	ctx := context.Background()

	for _, conn := range []string{mini.Addr(), "redis://" + mini.Addr() + "/0"} {
		client, err := NewRedisClient(ctx, conn)
		require.NoError(t, err, conn)
		assert.NoError(t, client.Close())
	}

	mini.Close()
	_, err := NewRedisClient(ctx, mini.Addr())
	assert.Error(t, err)
}
