package redis

import (
	"context"
	"testing"
	"time"

	"dv-relay/internal/config"
	"dv-relay/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := NewClient(config.RedisConfig{Enabled: false}, observability.NewNopLogger())

	require.NoError(t, err)
	assert.Nil(t, client)
	assert.False(t, client.IsEnabled())
}

func TestNilClient_MethodsReportNotInitialized(t *testing.T) {
	var client *Client
	ctx := context.Background()

	var dest map[string]string
	found, err := client.GetJSON(ctx, "k", &dest)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, client.SetJSON(ctx, "k", "v", time.Minute), ErrNotInitialized)
	assert.ErrorIs(t, client.ZAdd(ctx, "k"), ErrNotInitialized)
	assert.ErrorIs(t, client.ZRemRangeByScore(ctx, "k", "0", "1"), ErrNotInitialized)
	assert.ErrorIs(t, client.Expire(ctx, "k", time.Minute), ErrNotInitialized)

	_, err = client.ZCard(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = client.ZRange(ctx, "k", 0, -1)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.NoError(t, client.Close())
}

func TestNewClient_UnreachableServer(t *testing.T) {
	_, err := NewClient(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, observability.NewNopLogger())

	assert.Error(t, err)
}
