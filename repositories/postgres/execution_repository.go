package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const executionColumns = `id, request_id, action, language, status, model, fallback_used,
		       attempt_count, attempts, error_message, elapsed_ms, created_at`

// ExecutionRepository implements repositories.ExecutionRepository on PostgreSQL
type ExecutionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewExecutionRepository creates a new execution repository
func NewExecutionRepository(db *DB, logger *zap.Logger) repositories.ExecutionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new execution record
func (r *ExecutionRepository) Insert(ctx context.Context, rec *models.ExecutionRecord) error {
	query := `
		INSERT INTO ai_executions (
			id, request_id, action, language, status, model, fallback_used,
			attempt_count, attempts, error_message, elapsed_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	attempts := []byte(rec.Attempts)
	if len(attempts) == 0 {
		attempts = []byte("[]")
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.RequestID,
		rec.Action,
		rec.Language,
		string(rec.Status),
		rec.Model,
		rec.FallbackUsed,
		rec.AttemptCount,
		attempts,
		rec.ErrorMessage,
		rec.ElapsedMs,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution record: %w", err)
	}

	r.logger.Debug("execution record inserted",
		zap.String("id", rec.ID.String()),
		zap.String("status", string(rec.Status)))
	return nil
}

// GetByID retrieves an execution record by ID
func (r *ExecutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExecutionRecord, error) {
	query := `SELECT ` + executionColumns + `
		FROM ai_executions
		WHERE id = $1
	`

	rec, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("execution %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get execution record: %w", err)
	}
	return rec, nil
}

// ListRecent returns the newest records first
func (r *ExecutionRepository) ListRecent(ctx context.Context, limit int) ([]*models.ExecutionRecord, error) {
	query := `SELECT ` + executionColumns + `
		FROM ai_executions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, repositories.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list execution records: %w", err)
	}
	defer rows.Close()

	var out []*models.ExecutionRecord
	for rows.Next() {
		rec, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate execution records: %w", err)
	}
	return out, nil
}

// Ping checks the database
func (r *ExecutionRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExecution(row rowScanner) (*models.ExecutionRecord, error) {
	rec := &models.ExecutionRecord{}
	var (
		requestID sql.NullString
		status    string
		attempts  []byte
	)

	err := row.Scan(
		&rec.ID,
		&requestID,
		&rec.Action,
		&rec.Language,
		&status,
		&rec.Model,
		&rec.FallbackUsed,
		&rec.AttemptCount,
		&attempts,
		&rec.ErrorMessage,
		&rec.ElapsedMs,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.RequestID = requestID.String
	rec.Status = models.ExecutionStatus(status)
	rec.Attempts = attempts
	return rec, nil
}
