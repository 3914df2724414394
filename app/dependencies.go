package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/config"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/handlers"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/internal/observability"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/middleware"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories/memory"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories/postgres"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/audit"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/inference"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers/openrouter"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/routing"
	"go.uber.org/zap"
)

// MemoryStoreCapacity bounds the in-memory execution store
const MemoryStoreCapacity = 1000

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Metrics is always set; Prometheus is nil when metrics are disabled
	Metrics    observability.Metrics
	Prometheus *observability.PrometheusMetrics

	// Provider chain
	Registry     *providers.Registry
	Executor     providers.Executor
	Orchestrator *routing.Service

	// Execution audit trail, nil when auditing is disabled
	Executions repositories.ExecutionRepository
	Audit      *audit.Service

	// Services
	Inference *inference.Service

	// HTTP
	RateLimiter   *middleware.RateLimiter
	AIHandler     *handlers.AIHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics(cfg)

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := deps.initAudit(ctx, cfg); err != nil {
		deps.closeDB()
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}

	deps.initServices(cfg)
	deps.initHTTP(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.Strings("models", deps.Registry.IDs()),
		zap.Bool("degraded", deps.Orchestrator.Degraded()),
		zap.Bool("audit_enabled", deps.Audit != nil),
		zap.Bool("metrics_enabled", deps.Prometheus != nil))
	return deps, nil
}

func (d *Dependencies) initMetrics(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		d.Metrics = observability.NopMetrics{}
		return
	}
	d.Prometheus = observability.NewPrometheusMetrics(cfg.Observability.MetricsNamespace)
	d.Metrics = d.Prometheus
}

// initProviders builds the registry, the gateway executor and the orchestrator
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry, err := providers.NewRegistry(cfg.AI.Models)
	if err != nil {
		return err
	}
	d.Registry = registry

	d.Executor = openrouter.NewExecutor(openrouter.Config{
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		AppURL:   cfg.AI.AppURL,
		AppTitle: cfg.AI.AppTitle,
		Timeout:  cfg.AI.Timeout,
	}, nil)

	d.Orchestrator = routing.NewService(routing.Config{
		APIKey:      cfg.AI.APIKey,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
		MaxRetries:  cfg.AI.MaxRetries,
		BackoffBase: cfg.AI.BackoffBase,
	}, registry, d.Executor, d.Metrics, d.Logger.Named("routing"))

	if d.Orchestrator.Degraded() {
		d.Logger.Warn("no usable OpenRouter credential, requests will receive offline responses")
	}
	return nil
}

// initAudit opens the execution store and starts the audit workers
func (d *Dependencies) initAudit(ctx context.Context, cfg *config.Config) error {
	if !cfg.Audit.Enabled {
		d.Logger.Info("execution audit trail disabled")
		return nil
	}

	if cfg.Audit.Database != nil {
		db, err := postgres.NewDB(*cfg.Audit.Database, d.Logger)
		if err != nil {
			return err
		}
		d.DB = db

		if err := db.InitSchema(ctx); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		d.Executions = postgres.NewExecutionRepository(db, d.Logger)
	} else {
		d.Logger.Info("no database configured, keeping executions in memory",
			zap.Int("capacity", MemoryStoreCapacity))
		d.Executions = memory.NewExecutionRepository(MemoryStoreCapacity)
	}

	d.Audit = audit.NewService(d.Executions, d.Logger.Named("audit"), audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.Workers,
	})
	return d.Audit.Start()
}

func (d *Dependencies) initServices(cfg *config.Config) {
	// a nil *audit.Service must not become a non-nil interface
	var recorder inference.Recorder
	if d.Audit != nil {
		recorder = d.Audit
	}

	d.Inference = inference.NewService(d.Orchestrator, recorder, d.Executions, d.Metrics, d.Logger.Named("inference")).
		WithSecretRedaction(cfg.AI.RedactSecrets)
}

func (d *Dependencies) initHTTP(cfg *config.Config) {
	d.AIHandler = handlers.NewAIHandler(d.Inference, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.Inference, d.Orchestrator, d.Logger)

	if cfg.RateLimit.Enabled {
		d.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit, d.Logger)
	}
}

// Close drains the audit trail and releases the database
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Audit != nil {
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.Audit.Stop(timeout); err != nil && !errors.Is(err, audit.ErrNotStarted) {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if err := d.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}

func (d *Dependencies) closeDB() error {
	if d.DB == nil {
		return nil
	}
	err := d.DB.Close()
	d.DB = nil
	return err
}
