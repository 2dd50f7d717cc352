// Package config aggregates every component's environment configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/hirewire/internal/server"
	"github.com/dmitrymomot/hirewire/pkg/db"
	"github.com/dmitrymomot/hirewire/pkg/logger"
	"github.com/dmitrymomot/hirewire/pkg/mailer"
	"github.com/dmitrymomot/hirewire/pkg/mailer/resend"
	"github.com/dmitrymomot/hirewire/pkg/redis"
)

// Config is the full service configuration parsed from the environment.
type Config struct {
	DB     db.Config
	Redis  redis.Config
	Server server.Config
	Mailer mailer.Config
	Resend resend.Config
	Sentry logger.SentryConfig

	// Shared secret the identity provider signs webhook deliveries with.
	WebhookSecret string `env:"IDENTITY_WEBHOOK_SECRET,required"`

	// Optional semantic-matching service; empty falls back to match-all.
	MatcherURL string `env:"MATCHER_URL"`

	// Per-category fan-out rate limits, events per window.
	UserDigestRateLimit int           `env:"USER_DIGEST_RATE_LIMIT" envDefault:"10"`
	OrgDigestRateLimit  int           `env:"ORG_DIGEST_RATE_LIMIT" envDefault:"1000"`
	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	QueueMaxWorkers int `env:"QUEUE_MAX_WORKERS" envDefault:"100"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
