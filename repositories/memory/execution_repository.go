// Package memory holds the in-process execution store used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories"
	"github.com/google/uuid"
)

// DefaultCapacity bounds the number of retained records
const DefaultCapacity = 1000

// ExecutionRepository keeps the most recent records in memory
type ExecutionRepository struct {
	mu       sync.RWMutex
	records  []*models.ExecutionRecord
	byID     map[uuid.UUID]*models.ExecutionRecord
	capacity int
}

// NewExecutionRepository creates a bounded in-memory repository
func NewExecutionRepository(capacity int) *ExecutionRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ExecutionRepository{
		byID:     make(map[uuid.UUID]*models.ExecutionRecord),
		capacity: capacity,
	}
}

// Insert appends a copy of the record, evicting the oldest when full
func (r *ExecutionRepository) Insert(ctx context.Context, rec *models.ExecutionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("execution record is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rec.ID]; exists {
		return fmt.Errorf("execution %s already recorded", rec.ID)
	}

	cp := *rec
	if len(r.records) >= r.capacity {
		oldest := r.records[0]
		delete(r.byID, oldest.ID)
		r.records = r.records[1:]
	}
	r.records = append(r.records, &cp)
	r.byID[cp.ID] = &cp
	return nil
}

// GetByID retrieves a record by execution id
func (r *ExecutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExecutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("execution %s: %w", id, repositories.ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

// ListRecent returns the newest records first
func (r *ExecutionRepository) ListRecent(ctx context.Context, limit int) ([]*models.ExecutionRecord, error) {
	limit = repositories.NormalizeLimit(limit)

	r.mu.RLock()
	out := make([]*models.ExecutionRecord, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping always succeeds
func (r *ExecutionRepository) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of retained records
func (r *ExecutionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

var _ repositories.ExecutionRepository = (*ExecutionRepository)(nil)
