package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/repositories"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/routing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when recording before Start or after Stop
	ErrNotStarted = errors.New("audit service not started")

	// ErrBufferFull is returned when a record was dropped
	ErrBufferFull = errors.New("audit buffer full")
)

// Service persists execution traces asynchronously
type Service struct {
	repo        repositories.ExecutionRepository
	logger      *zap.Logger
	records     chan *models.ExecutionRecord
	workerCount int
	bufferSize  int
	insertTTL   time.Duration
	wg          sync.WaitGroup
	dropped     atomic.Int64
	written     atomic.Int64
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// Config holds configuration for the Service
type Config struct {
	BufferSize    int           // Size of the record buffer channel
	WorkerCount   int           // Number of concurrent writers
	InsertTimeout time.Duration // Per-insert deadline
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:    256,
		WorkerCount:   2,
		InsertTimeout: 5 * time.Second,
	}
}

// NewService creates a new Service instance
func NewService(repo repositories.ExecutionRepository, logger *zap.Logger, config Config) *Service {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.InsertTimeout <= 0 {
		config.InsertTimeout = defaults.InsertTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:        repo,
		logger:      logger,
		records:     make(chan *models.ExecutionRecord, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		insertTTL:   config.InsertTimeout,
	}
}

// Start starts the background writers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting records and waits for pending ones to be written
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.stopped = true
	pending := len(s.records)
	close(s.records)
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_records", pending))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully",
			zap.Int64("written", s.written.Load()),
			zap.Int64("dropped", s.dropped.Load()))
		return nil
	case <-timer.C:
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record queues a record without blocking; it is dropped when the buffer is full
func (s *Service) Record(rec *models.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return ErrNotStarted
	}

	select {
	case s.records <- rec:
		return nil
	default:
		s.dropped.Add(1)
		s.logger.Warn("audit buffer full, dropping execution record",
			zap.String("execution_id", rec.ID.String()),
			zap.String("status", string(rec.Status)))
		return ErrBufferFull
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for rec := range s.records {
		if err := s.write(rec); err != nil {
			s.logger.Error("failed to write execution record",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("execution_id", rec.ID.String()))
			continue
		}
		s.written.Add(1)
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *Service) write(rec *models.ExecutionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.insertTTL)
	defer cancel()

	if err := s.repo.Insert(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert execution record: %w", err)
	}
	return nil
}

// GetStats returns statistics about the audit service
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingRecords: len(s.records),
		WorkerCount:    s.workerCount,
		Started:        s.started && !s.stopped,
		Written:        s.written.Load(),
		Dropped:        s.dropped.Load(),
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize     int
	PendingRecords int
	WorkerCount    int
	Started        bool
	Written        int64
	Dropped        int64
}

// StatusOf maps a trace to its persisted status
func StatusOf(trace *routing.ExecutionTrace) models.ExecutionStatus {
	switch {
	case trace.Success && trace.Degraded:
		return models.ExecutionStatusDegraded
	case trace.Success:
		return models.ExecutionStatusSuccess
	case errors.Is(trace.Err, routing.ErrAborted):
		return models.ExecutionStatusAborted
	default:
		return models.ExecutionStatusFailed
	}
}

// FromTrace builds the persisted form of one orchestration
func FromTrace(id uuid.UUID, requestID, action, language string, trace *routing.ExecutionTrace) *models.ExecutionRecord {
	return models.NewExecutionRecord(id, action, language).
		WithRequest(requestID).
		WithAttempts(trace.Attempts, len(trace.Attempts)).
		WithOutcome(StatusOf(trace), trace.FinalProviderID, trace.FallbackUsed, trace.TotalElapsedMs).
		WithError(trace.AggregateError)
}
