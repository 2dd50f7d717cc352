package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Deps are the collaborators the router needs.
type Deps struct {
	Queue  Enqueuer
	Logger *slog.Logger

	// Readiness probes, keyed by dependency name.
	Probes map[string]func(ctx context.Context) error
}

// NewRouter assembles the HTTP routes.
func NewRouter(deps Deps) (chi.Router, error) {
	if deps.Queue == nil {
		return nil, ErrQueueRequired
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(log))

	r.Post("/webhooks/identity", handleIdentityWebhook(deps.Queue, log))
	r.Get("/healthz", handleHealthz(deps.Probes))

	return r, nil
}

// Run serves until the context is canceled, then shuts down gracefully.
func Run(ctx context.Context, cfg Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
