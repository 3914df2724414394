package routing

import (
	"context"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds the attempts made against a single provider
type RetryPolicy struct {
	// MaxRetries is the total number of attempts per provider; values below 1 mean one attempt
	MaxRetries int

	// BackoffBase is multiplied by the attempt number between retries
	BackoffBase time.Duration

	// Sleep defaults to a context-aware timer
	Sleep SleepFunc

	// OnAttempt, if set, observes every attempt as it completes
	OnAttempt func(AttemptRecord)
}

// ProviderRun is the outcome of running the policy against one provider
type ProviderRun struct {
	Response *providers.Response
	Attempts []AttemptRecord
	LastErr  *providers.ProviderError

	// Aborted is the context error when the caller gave up mid-run
	Aborted error
}

// Succeeded reports whether the provider produced a response
func (r ProviderRun) Succeeded() bool {
	return r.Response != nil
}

// MaxAttempts returns the effective attempt budget
func (p RetryPolicy) MaxAttempts() int {
	if p.MaxRetries < 1 {
		return 1
	}
	return p.MaxRetries
}

// Backoff returns the delay after the given zero-based failed attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BackoffBase * time.Duration(attempt+1)
}

// Run calls the executor until it succeeds, fails terminally or the budget is spent
func (p RetryPolicy) Run(ctx context.Context, executor providers.Executor, call providers.Call) ProviderRun {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var run ProviderRun
	maxAttempts := p.MaxAttempts()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			run.Aborted = err
			return run
		}

		start := time.Now()
		outcome := executor.Execute(ctx, call)
		record := recordFor(call.Provider, attempt, outcome, time.Since(start))
		run.Attempts = append(run.Attempts, record)
		if p.OnAttempt != nil {
			p.OnAttempt(record)
		}

		if outcome.OK() {
			run.Response = outcome.Response
			run.LastErr = nil
			return run
		}

		run.LastErr = outcome.Err
		if run.LastErr == nil {
			run.LastErr = providers.NewProviderError(call.Provider, providers.KindEmptyResponse, "executor returned no response", 0, nil)
		}

		if err := ctx.Err(); err != nil {
			run.Aborted = err
			return run
		}
		if run.LastErr.Kind.Terminal() || attempt == maxAttempts-1 {
			return run
		}

		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			run.Aborted = err
			return run
		}
	}

	return run
}

func recordFor(provider string, attempt int, outcome providers.Outcome, latency time.Duration) AttemptRecord {
	record := AttemptRecord{
		ProviderID: provider,
		Attempt:    attempt,
		Succeeded:  outcome.OK(),
		LatencyMs:  millis(latency),
	}
	if outcome.Err != nil {
		record.ErrorKind = outcome.Err.Kind
		record.Error = outcome.Err.Error()
	} else if !outcome.OK() {
		record.ErrorKind = providers.KindEmptyResponse
		record.Error = "executor returned no response"
	}
	return record
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
