package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ExecutionRepository stores orchestration traces for later debugging.
// Records are append-only; the orchestrator never reads them back.
type ExecutionRepository interface {
	// Insert appends a record
	Insert(ctx context.Context, record *models.ExecutionRecord) error

	// GetByID retrieves a record by execution id
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExecutionRecord, error)

	// ListRecent returns the newest records first
	ListRecent(ctx context.Context, limit int) ([]*models.ExecutionRecord, error)

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}

// DefaultListLimit caps ListRecent when the caller passes a non-positive limit
const DefaultListLimit = 50

// NormalizeLimit clamps a list limit into (0, DefaultListLimit*10]
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > DefaultListLimit*10 {
		return DefaultListLimit * 10
	}
	return limit
}
