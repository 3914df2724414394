package inference

import (
	"context"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/prompt"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/routing"
	"github.com/google/uuid"
)

// Request is one code-assistance request from the client
type Request struct {
	Action         string `json:"action" validate:"required"`
	Code           string `json:"code" validate:"required,notblank"`
	Language       string `json:"language" validate:"required,notblank,max=64"`
	Output         string `json:"output,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty" validate:"omitempty,max=64"`
	CustomPrompt   string `json:"customPrompt,omitempty"`

	// RequestID is the HTTP request id, set by the handler
	RequestID string `json:"-"`
}

// Result is the caller-facing outcome plus the id under which the trace was recorded
type Result struct {
	ExecutionID uuid.UUID `json:"executionId"`
	routing.ExecutionResult
}

// ModelsResponse lists the configured fallback chain
type ModelsResponse struct {
	Models     []providers.ProviderSpec `json:"models"`
	Configured bool                     `json:"configured"`
}

// Orchestrator runs one request through the provider chain
type Orchestrator interface {
	Execute(ctx context.Context, rc prompt.RequestContext) *routing.ExecutionTrace
	ListConfiguredProviders() ([]providers.ProviderSpec, bool)
}

// Recorder accepts execution records for asynchronous persistence
type Recorder interface {
	Record(rec *models.ExecutionRecord) error
}
