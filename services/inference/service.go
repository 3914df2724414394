package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/internal/observability"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/audit"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/prompt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the request pipeline: validate, orchestrate, measure, record
type Service struct {
	orchestrator Orchestrator
	recorder     Recorder
	executions   repositories.ExecutionRepository
	metrics      observability.Metrics
	logger       *zap.Logger

	redactSecrets bool
}

// NewService creates a new inference service. recorder and executions may be nil.
func NewService(
	orchestrator Orchestrator,
	recorder Recorder,
	executions repositories.ExecutionRepository,
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
		orchestrator: orchestrator,
		recorder:     recorder,
		executions:   executions,
		metrics:      metrics,
		logger:       logger,
	}
}

// WithSecretRedaction replaces credentials found in submitted code before it leaves the process
func (s *Service) WithSecretRedaction(enabled bool) *Service {
	s.redactSecrets = enabled
	return s
}

// Process validates the request and runs it through the provider chain.
// Provider failures are reported in the result; only invalid input returns an error.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	rc, err := requestContext(req)
	if err != nil {
		return nil, err
	}

	executionID := uuid.New()
	logger := observability.WithContext(ctx, s.logger).With(
		zap.String("execution_id", executionID.String()),
		zap.String("action", string(rc.Action)),
		zap.String("language", rc.Language))

	logger.Debug("processing AI request", zap.Int("code_length", len(rc.Code)))

	rc.Code = s.screenSecrets(logger, rc.Code)

	start := time.Now()
	trace := s.orchestrator.Execute(ctx, rc)
	elapsed := time.Since(start)

	status := audit.StatusOf(trace)
	s.metrics.RecordExecution(observability.ExecutionLabels{
		Action:       string(rc.Action),
		Model:        trace.FinalProviderID,
		Status:       string(status),
		FallbackUsed: trace.FallbackUsed,
	}, elapsed)

	if s.recorder != nil {
		rec := audit.FromTrace(executionID, req.RequestID, string(rc.Action), rc.Language, trace)
		if err := s.recorder.Record(rec); err != nil && !errors.Is(err, audit.ErrBufferFull) {
			logger.Debug("execution record not queued", zap.Error(err))
		}
	}

	logger.Info("AI request processed",
		zap.String("status", string(status)),
		zap.String("model", trace.FinalProviderID),
		zap.Bool("fallback_used", trace.FallbackUsed),
		zap.Int("attempts", len(trace.Attempts)),
		zap.Duration("elapsed", elapsed))

	return &Result{
		ExecutionID:     executionID,
		ExecutionResult: trace.Result(),
	}, nil
}

// Models returns the configured chain and whether a credential is present
func (s *Service) Models() ModelsResponse {
	specs, configured := s.orchestrator.ListConfiguredProviders()
	return ModelsResponse{Models: specs, Configured: configured}
}

// GetExecution returns a recorded trace
func (s *Service) GetExecution(ctx context.Context, id uuid.UUID) (*models.ExecutionRecord, error) {
	if s.executions == nil {
		return nil, services.ErrAuditStoreUnavailable
	}

	rec, err := s.executions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.NewDomainError(services.ErrorTypeNotFound, "execution not found", err).
				WithDetail("id", id.String())
		}
		return nil, services.WrapInternal("failed to load execution", err)
	}
	return rec, nil
}

// RecentExecutions returns the newest recorded traces
func (s *Service) RecentExecutions(ctx context.Context, limit int) ([]*models.ExecutionRecord, error) {
	if s.executions == nil {
		return nil, services.ErrAuditStoreUnavailable
	}

	recs, err := s.executions.ListRecent(ctx, limit)
	if err != nil {
		return nil, services.WrapInternal("failed to list executions", err)
	}
	if recs == nil {
		recs = []*models.ExecutionRecord{}
	}
	return recs, nil
}

// Ready reports whether the execution store is reachable
func (s *Service) Ready(ctx context.Context) error {
	if s.executions == nil {
		return nil
	}
	if err := s.executions.Ping(ctx); err != nil {
		return services.NewDomainError(services.ErrorTypeUnavailable, "execution store unavailable", err)
	}
	return nil
}

func (s *Service) screenSecrets(logger *zap.Logger, code string) string {
	var matches []prompt.SecretMatch
	if s.redactSecrets {
		code, matches = prompt.RedactSecrets(code)
	} else {
		matches = prompt.FindSecrets(code)
	}
	if len(matches) > 0 {
		logger.Warn("submitted code contains likely credentials",
			zap.Strings("types", prompt.SecretTypes(matches)),
			zap.Int("count", len(matches)),
			zap.Bool("redacted", s.redactSecrets))
	}
	return code
}

func requestContext(req Request) (prompt.RequestContext, error) {
	action, ok := prompt.ParseAction(req.Action)
	if !ok {
		return prompt.RequestContext{}, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("invalid action %q", req.Action), nil).
			WithDetail("field", "action").
			WithDetail("allowed", prompt.ActionNames())
	}
	if strings.TrimSpace(req.Code) == "" {
		return prompt.RequestContext{}, services.NewDomainError(services.ErrorTypeValidation,
			"code cannot be empty", nil).WithDetail("field", "code")
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		return prompt.RequestContext{}, services.NewDomainError(services.ErrorTypeValidation,
			"language cannot be empty", nil).WithDetail("field", "language")
	}

	return prompt.RequestContext{
		Action:         action,
		Code:           req.Code,
		Language:       language,
		Output:         req.Output,
		TargetLanguage: strings.TrimSpace(req.TargetLanguage),
		CustomPrompt:   req.CustomPrompt,
	}, nil
}
