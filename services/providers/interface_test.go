package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOutcome(t *testing.T) {
	ok := Success("openai/gpt-4o-mini", "hello", 10*time.Millisecond)
	if !ok.OK() {
		t.Fatal("Success outcome should be OK")
	}
	if ok.Response.Provider != "openai/gpt-4o-mini" {
		t.Errorf("Provider = %s, want openai/gpt-4o-mini", ok.Response.Provider)
	}

	failed := Failure(NewProviderError("p", KindTimeout, "slow", 0, nil))
	if failed.OK() {
		t.Error("Failure outcome should not be OK")
	}

	if (Outcome{}).OK() {
		t.Error("zero Outcome should not be OK")
	}
}

func TestExecutorFunc(t *testing.T) {
	var got Call
	exec := ExecutorFunc(func(ctx context.Context, call Call) Outcome {
		got = call
		return Success(call.Provider, "done", 0)
	})

	out := exec.Execute(context.Background(), Call{Provider: "a/b", User: "hi"})
	if !out.OK() {
		t.Fatal("expected success")
	}
	if got.User != "hi" {
		t.Errorf("User = %q, want hi", got.User)
	}
}

func TestProviderError(t *testing.T) {
	tests := []struct {
		name       string
		err        *ProviderError
		wantMsg    string
		wantRetry  bool
		wantUnwrap error
	}{
		{
			name:      "auth error is terminal",
			err:       NewProviderError("p", KindAuth, "invalid api key", 401, nil),
			wantMsg:   "invalid api key",
			wantRetry: false,
		},
		{
			name:       "timeout with cause",
			err:        NewProviderError("p", KindTimeout, "request timed out", 0, context.DeadlineExceeded),
			wantMsg:    "request timed out: context deadline exceeded",
			wantRetry:  true,
			wantUnwrap: context.DeadlineExceeded,
		},
		{
			name:      "empty response is retryable",
			err:       NewProviderError("p", KindEmptyResponse, "empty response", 200, nil),
			wantMsg:   "empty response",
			wantRetry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Retryable(); got != tt.wantRetry {
				t.Errorf("Retryable() = %v, want %v", got, tt.wantRetry)
			}
			if got := IsRetryable(tt.err); got != tt.wantRetry {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.wantRetry)
			}
			if tt.wantUnwrap != nil && !errors.Is(tt.err, tt.wantUnwrap) {
				t.Errorf("errors.Is(%v) = false", tt.wantUnwrap)
			}
		})
	}

	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}
