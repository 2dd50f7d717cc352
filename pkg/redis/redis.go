package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	ErrParseURL           = errors.New("redis: failed to parse connection URL")
	ErrConnect            = errors.New("redis: failed to connect")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")
)

// Config holds Redis connection parameters, populated from environment
// variables.
type Config struct {
	ConnectionURL string        `env:"REDIS_URL,required"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
}

// Connect creates a Redis client and verifies connectivity with a ping,
// retrying with a growing backoff. Supports redis:// and rediss:// URLs.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.ConnectionURL, "redis://") && !strings.HasPrefix(cfg.ConnectionURL, "rediss://") {
		return nil, ErrParseURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrParseURL, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrConnect
}

// Healthcheck returns a readiness probe for the client.
func Healthcheck(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a hook that closes the client.
func Shutdown(client *redis.Client) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
