package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/app"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/config"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/internal/observability"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/routes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// rateLimitSweep is how often idle rate limit clients are evicted
const rateLimitSweep = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ai-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		return err
	}

	srv := newServer(cfg, routes.SetupRoutes(deps))
	return serve(ctx, srv, deps)
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(
		zap.String("service", "ai-gateway"),
		zap.String("environment", cfg.Environment)), nil
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}

// serve runs the server until ctx is cancelled, then shuts down and drains the audit trail
func serve(ctx context.Context, srv *http.Server, deps *app.Dependencies) error {
	logger := deps.Logger
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("ai-gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if deps.RateLimiter != nil {
		g.Go(func() error {
			return deps.RateLimiter.Run(gctx, rateLimitSweep)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := deps.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("ai-gateway stopped with error", zap.Error(err))
		return err
	}
	logger.Info("ai-gateway stopped")
	return nil
}
