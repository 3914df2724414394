package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the terminal state of one orchestration
type ExecutionStatus string

const (
	ExecutionStatusSuccess  ExecutionStatus = "success"
	ExecutionStatusFailed   ExecutionStatus = "failed"
	ExecutionStatusDegraded ExecutionStatus = "degraded"
	ExecutionStatusAborted  ExecutionStatus = "aborted"
)

// ExecutionRecord is the persisted trace of one AI request
type ExecutionRecord struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	RequestID    string          `json:"request_id" db:"request_id"`
	Action       string          `json:"action" db:"action"`
	Language     string          `json:"language" db:"language"`
	Status       ExecutionStatus `json:"status" db:"status"`
	Model        *string         `json:"model,omitempty" db:"model"`
	FallbackUsed bool            `json:"fallback_used" db:"fallback_used"`
	AttemptCount int             `json:"attempt_count" db:"attempt_count"`
	Attempts     json.RawMessage `json:"attempts" db:"attempts"` // JSONB list of per-call records
	ErrorMessage *string         `json:"error_message,omitempty" db:"error_message"`
	ElapsedMs    int64           `json:"elapsed_ms" db:"elapsed_ms"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ExecutionRecord model
func (ExecutionRecord) TableName() string {
	return "ai_executions"
}

// NewExecutionRecord creates a record for the given execution id
func NewExecutionRecord(id uuid.UUID, action, language string) *ExecutionRecord {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &ExecutionRecord{
		ID:        id,
		Action:    action,
		Language:  language,
		Attempts:  json.RawMessage("[]"),
		CreatedAt: time.Now().UTC(),
	}
}

// WithRequest sets the HTTP request id
func (r *ExecutionRecord) WithRequest(requestID string) *ExecutionRecord {
	r.RequestID = requestID
	return r
}

// WithAttempts serializes the per-call records
func (r *ExecutionRecord) WithAttempts(attempts interface{}, count int) *ExecutionRecord {
	if data, err := json.Marshal(attempts); err == nil && string(data) != "null" {
		r.Attempts = data
	}
	r.AttemptCount = count
	return r
}

// WithOutcome sets the terminal state
func (r *ExecutionRecord) WithOutcome(status ExecutionStatus, model string, fallbackUsed bool, elapsedMs int64) *ExecutionRecord {
	r.Status = status
	if model != "" {
		r.Model = &model
	}
	r.FallbackUsed = fallbackUsed
	r.ElapsedMs = elapsedMs
	return r
}

// WithError sets the aggregate error message
func (r *ExecutionRecord) WithError(message string) *ExecutionRecord {
	if message != "" {
		r.ErrorMessage = &message
	}
	return r
}
