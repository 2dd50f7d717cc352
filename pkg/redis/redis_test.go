package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hirewire/pkg/redis"
)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := redis.Connect(ctx, redis.Config{})
	require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(ctx, redis.Config{ConnectionURL: "http://localhost:6379"})
	require.ErrorIs(t, err, redis.ErrParseURL)
}
