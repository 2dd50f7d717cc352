package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/hirewire/internal/config"
	"github.com/dmitrymomot/hirewire/internal/db/migrations"
	"github.com/dmitrymomot/hirewire/internal/digest"
	"github.com/dmitrymomot/hirewire/internal/identity"
	"github.com/dmitrymomot/hirewire/internal/notify"
	"github.com/dmitrymomot/hirewire/internal/server"
	"github.com/dmitrymomot/hirewire/internal/store"
	"github.com/dmitrymomot/hirewire/pkg/db"
	"github.com/dmitrymomot/hirewire/pkg/logger"
	"github.com/dmitrymomot/hirewire/pkg/mailer"
	resendsender "github.com/dmitrymomot/hirewire/pkg/mailer/resend"
	"github.com/dmitrymomot/hirewire/pkg/queue"
	"github.com/dmitrymomot/hirewire/pkg/redis"
	"github.com/dmitrymomot/hirewire/pkg/steps"
	"github.com/dmitrymomot/hirewire/pkg/tagcache"
	"github.com/dmitrymomot/hirewire/pkg/throttle"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry, server.RequestIDExtractor())

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}
	if err := queue.Migrate(ctx, pool); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	cache := tagcache.New[any]()
	defer func() { _ = cache.Close() }()

	pgStore, err := store.NewPostgres(pool)
	if err != nil {
		return err
	}

	executor, err := steps.NewExecutor(steps.NewPostgresStore(pool), steps.WithLogger(log))
	if err != nil {
		return err
	}

	verifier, err := identity.NewHMACVerifier(cfg.WebhookSecret)
	if err != nil {
		return err
	}

	reconciler, err := identity.NewReconciler(executor, verifier, pgStore, cache, identity.WithLogger(log))
	if err != nil {
		return err
	}

	// Planners enqueue through an insert-only client; the manager is only
	// assembled afterwards with the planners registered on it.
	enqueuer, err := queue.NewEnqueuer(pool, log)
	if err != nil {
		return err
	}

	var matcher digest.Matcher = digest.MatchAll{}
	if cfg.MatcherURL != "" {
		matcher = digest.NewHTTPMatcher(cfg.MatcherURL)
	}

	// Digest reads go through the tag cache so reconciliation invalidations
	// take effect between planner runs.
	cachedStore := store.NewCached(pgStore, cache)

	userPlanner, err := digest.NewUserDigestPlanner(executor, cachedStore, matcher, enqueuer, digest.WithLogger(log))
	if err != nil {
		return err
	}
	orgPlanner, err := digest.NewOrgDigestPlanner(executor, cachedStore, enqueuer, digest.WithLogger(log))
	if err != nil {
		return err
	}

	sender, err := resendsender.NewSender(cfg.Resend)
	if err != nil {
		return err
	}
	mail := mailer.New(sender, mailer.NewRenderer(notify.Templates()), cfg.Mailer)

	userLimiter, err := throttle.NewRedis(redisClient, throttle.Limit{
		Events: cfg.UserDigestRateLimit,
		Window: cfg.RateLimitWindow,
	})
	if err != nil {
		return err
	}
	orgLimiter, err := throttle.NewRedis(redisClient, throttle.Limit{
		Events: cfg.OrgDigestRateLimit,
		Window: cfg.RateLimitWindow,
	})
	if err != nil {
		return err
	}

	userConsumer, err := notify.NewUserDigestConsumer(executor, userLimiter, mail, notify.WithLogger(log))
	if err != nil {
		return err
	}
	orgConsumer, err := notify.NewOrgDigestConsumer(executor, orgLimiter, mail, notify.WithLogger(log))
	if err != nil {
		return err
	}

	manager, err := queue.NewManager(pool,
		queue.WithLogger(log),
		queue.WithMaxWorkers(cfg.QueueMaxWorkers),
		queue.WithTask[identity.Delivery](reconciler),
		queue.WithTask[digest.UserDigestEvent](userConsumer),
		queue.WithTask[digest.OrgDigestEvent](orgConsumer),
		queue.WithScheduledTask(userPlanner),
		queue.WithScheduledTask(orgPlanner),
	)
	if err != nil {
		return err
	}

	router, err := server.NewRouter(server.Deps{
		Queue:  manager,
		Logger: log,
		Probes: map[string]func(ctx context.Context) error{
			"postgres": pool.Ping,
			"redis":    redis.Healthcheck(redisClient),
		},
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", slog.String("addr", cfg.Server.Addr))
		return server.Run(ctx, cfg.Server, router)
	})

	g.Go(func() error {
		if err := manager.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return manager.Stop(stopCtx)
	})

	return g.Wait()
}
