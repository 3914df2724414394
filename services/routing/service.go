package routing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/internal/observability"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/degraded"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/prompt"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
)

// PlaceholderAPIKey is the sample value shipped in env templates; it counts as no credential
const PlaceholderAPIKey = "your_openrouter_api_key_here"

// Config holds the orchestration tunables
type Config struct {
	// APIKey is the gateway credential
	APIKey string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls randomness
	Temperature float64

	// Timeout bounds each provider call
	Timeout time.Duration

	// MaxRetries is the attempt budget per provider
	MaxRetries int

	// BackoffBase is the delay unit between attempts
	BackoffBase time.Duration
}

// DefaultConfig returns the stock tunables without a credential
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2000,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		BackoffBase: 500 * time.Millisecond,
	}
}

// CredentialPresent reports whether APIKey is usable
func (c Config) CredentialPresent() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// Service walks the provider chain in priority order until one answers
type Service struct {
	config   Config
	registry *providers.Registry
	executor providers.Executor
	policy   RetryPolicy
	metrics  observability.Metrics
	logger   *zap.Logger
}

// NewService creates a new orchestration service
func NewService(
	config Config,
	registry *providers.Registry,
	executor providers.Executor,
	metrics observability.Metrics,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config:   config,
		registry: registry,
		executor: executor,
		policy: RetryPolicy{
			MaxRetries:  config.MaxRetries,
			BackoffBase: config.BackoffBase,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Degraded reports whether requests will be answered with canned responses
func (s *Service) Degraded() bool {
	return s.registry.Len() == 0 || !s.config.CredentialPresent()
}

// ListConfiguredProviders returns the chain and whether a credential is configured
func (s *Service) ListConfiguredProviders() ([]providers.ProviderSpec, bool) {
	return s.registry.Providers(), s.config.CredentialPresent()
}

// ExecuteRequest runs the orchestration and returns the caller-facing summary
func (s *Service) ExecuteRequest(ctx context.Context, rc prompt.RequestContext) ExecutionResult {
	return s.Execute(ctx, rc).Result()
}

// Execute runs the orchestration and returns the full trace.
// Failures are reported in the trace, never as a Go error.
func (s *Service) Execute(ctx context.Context, rc prompt.RequestContext) *ExecutionTrace {
	startTime := time.Now()
	logger := observability.WithContext(ctx, s.logger).With(zap.String("action", string(rc.Action)))

	if s.Degraded() {
		logger.Info("no AI credential or models configured, serving degraded response")
		return &ExecutionTrace{
			Success:         true,
			FinalProviderID: DegradedModel,
			ResponseText:    degraded.Respond(rc.Action, rc.Language),
			Degraded:        true,
			Attempts:        []AttemptRecord{},
			TotalElapsedMs:  millis(time.Since(startTime)),
		}
	}

	msgs := prompt.Build(rc)
	trace := &ExecutionTrace{Attempts: []AttemptRecord{}}

	policy := s.policy
	policy.OnAttempt = func(r AttemptRecord) {
		s.metrics.RecordAttempt(r.ProviderID, string(r.ErrorKind), time.Duration(r.LatencyMs)*time.Millisecond)
	}

	var lastErr *providers.ProviderError
	for _, spec := range s.registry.Providers() {
		call := providers.Call{
			Provider:    spec.ID,
			System:      msgs.System,
			User:        msgs.User,
			MaxTokens:   s.config.MaxTokens,
			Temperature: s.config.Temperature,
			Timeout:     s.config.Timeout,
		}

		run := policy.Run(ctx, s.executor, call)
		trace.Attempts = append(trace.Attempts, run.Attempts...)

		if run.Succeeded() {
			trace.Success = true
			trace.FinalProviderID = spec.ID
			trace.ResponseText = run.Response.Content
			trace.FallbackUsed = spec.PriorityRank > 1
			trace.TotalElapsedMs = millis(time.Since(startTime))

			logger.Info("AI request completed",
				zap.String("provider", spec.ID),
				zap.Bool("fallback_used", trace.FallbackUsed),
				zap.Int("attempts", len(trace.Attempts)),
				zap.Int64("elapsed_ms", trace.TotalElapsedMs))
			return trace
		}

		if run.LastErr != nil {
			lastErr = run.LastErr
		}

		if run.Aborted != nil {
			trace.Err = fmt.Errorf("%w: %w", ErrAborted, run.Aborted)
			trace.AggregateError = "AI request aborted: " + run.Aborted.Error()
			trace.TotalElapsedMs = millis(time.Since(startTime))

			logger.Warn("AI request aborted by caller",
				zap.String("provider", spec.ID),
				zap.Int("attempts", len(trace.Attempts)),
				zap.Error(run.Aborted))
			return trace
		}

		fields := []zap.Field{
			zap.String("provider", spec.ID),
			zap.Int("attempts", len(run.Attempts)),
		}
		if run.LastErr != nil {
			fields = append(fields, zap.String("error_kind", string(run.LastErr.Kind)), zap.Error(run.LastErr))
		}
		logger.Warn("AI model failed, trying next", fields...)
	}

	trace.TotalElapsedMs = millis(time.Since(startTime))
	trace.AggregateError = "All AI models failed. Last error: " + describe(lastErr)
	if lastErr != nil {
		trace.Err = fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
	} else {
		trace.Err = ErrAllProvidersFailed
	}

	logger.Error("all AI models failed",
		zap.Int("providers", s.registry.Len()),
		zap.Int("attempts", len(trace.Attempts)),
		zap.Error(trace.Err))
	return trace
}

func describe(err *providers.ProviderError) string {
	if err == nil {
		return "unknown error"
	}
	if err.Provider == "" {
		return err.Error()
	}
	return err.Provider + ": " + err.Error()
}
