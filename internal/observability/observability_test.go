package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"default format", "warn", "", false},
		{"bad level", "loud", "json", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-42")
	WithContext(ctx, base).Info("hello")
	WithContext(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics("coderipper")

	m.RecordAttempt("openai/gpt-4o-mini", "timeout", 120*time.Millisecond)
	m.RecordAttempt("openai/gpt-4o-mini", "", 80*time.Millisecond)
	m.RecordExecution(ExecutionLabels{Action: "explain", Model: "openai/gpt-4o-mini", Status: StatusSuccess}, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `coderipper_provider_attempts_total{outcome="timeout",provider="openai/gpt-4o-mini"} 1`)
	assert.Contains(t, text, `coderipper_provider_attempts_total{outcome="success",provider="openai/gpt-4o-mini"} 1`)
	assert.Contains(t, text, `coderipper_executions_total{action="explain",fallback_used="false",model="openai/gpt-4o-mini",status="success"} 1`)
	assert.Contains(t, text, "coderipper_execution_duration_seconds_bucket")
}

func TestNopMetrics(t *testing.T) {
	var m Metrics = NopMetrics{}
	m.RecordAttempt("p", "timeout", time.Second)
	m.RecordExecution(ExecutionLabels{}, time.Second)
}
