package routing

import (
	"errors"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
)

var (
	// ErrAllProvidersFailed is wrapped by the trace error when every provider was exhausted
	ErrAllProvidersFailed = errors.New("all AI models failed")

	// ErrAborted is wrapped by the trace error when the caller cancelled mid-orchestration
	ErrAborted = errors.New("orchestration aborted")
)

// DegradedModel is reported as the model when canned responses were served
const DegradedModel = "mock"

// AttemptRecord describes one physical provider call
type AttemptRecord struct {
	ProviderID string              `json:"providerId"`
	Attempt    int                 `json:"attempt"`
	Succeeded  bool                `json:"succeeded"`
	ErrorKind  providers.ErrorKind `json:"errorKind,omitempty"`
	Error      string              `json:"error,omitempty"`
	LatencyMs  int64               `json:"latencyMs"`
}

// ExecutionTrace is the full record of one orchestration
type ExecutionTrace struct {
	Success         bool            `json:"success"`
	FinalProviderID string          `json:"finalProviderId,omitempty"`
	ResponseText    string          `json:"responseText,omitempty"`
	FallbackUsed    bool            `json:"fallbackUsed"`
	Degraded        bool            `json:"degraded"`
	Attempts        []AttemptRecord `json:"attempts"`
	TotalElapsedMs  int64           `json:"totalElapsedMs"`
	AggregateError  string          `json:"aggregateError,omitempty"`

	// Err wraps ErrAllProvidersFailed or ErrAborted when Success is false
	Err error `json:"-"`
}

// Result converts the trace into the caller-facing summary
func (t *ExecutionTrace) Result() ExecutionResult {
	return ExecutionResult{
		Success:         t.Success,
		Response:        t.ResponseText,
		Model:           t.FinalProviderID,
		Error:           t.AggregateError,
		FallbackUsed:    t.FallbackUsed,
		Attempts:        len(t.Attempts),
		ExecutionTimeMs: t.TotalElapsedMs,
	}
}

// ExecutionResult is returned to API callers
type ExecutionResult struct {
	Success         bool   `json:"success"`
	Response        string `json:"response,omitempty"`
	Model           string `json:"model,omitempty"`
	Error           string `json:"error,omitempty"`
	FallbackUsed    bool   `json:"fallbackUsed"`
	Attempts        int    `json:"attempts"`
	ExecutionTimeMs int64  `json:"executionTime"`
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}
