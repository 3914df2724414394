package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type readinessFunc func(ctx context.Context) error

func (f readinessFunc) Ready(ctx context.Context) error { return f(ctx) }

type chainStatus bool

func (c chainStatus) Degraded() bool { return bool(c) }

func TestHandleHealth(t *testing.T) {
	handler := NewHealthHandler(nil, nil, zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Status)
	assert.NotEmpty(t, response.Timestamp)
}

func TestHandleReadiness(t *testing.T) {
	tests := []struct {
		name       string
		store      ReadinessChecker
		chain      ChainStatus
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "healthy store, live providers",
			store:      readinessFunc(func(context.Context) error { return nil }),
			chain:      chainStatus(false),
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"execution_store": "healthy", "providers": "configured"},
		},
		{
			name:       "degraded providers stay ready",
			store:      readinessFunc(func(context.Context) error { return nil }),
			chain:      chainStatus(true),
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"execution_store": "healthy", "providers": "degraded"},
		},
		{
			name:       "store down",
			store:      readinessFunc(func(context.Context) error { return errors.New("connection refused") }),
			chain:      chainStatus(false),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"execution_store": "unhealthy", "providers": "configured"},
		},
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.store, tt.chain, zap.NewNop())

			w := httptest.NewRecorder()
			handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)

			var response HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			if tt.wantChecks == nil {
				assert.Empty(t, response.Checks)
			} else {
				assert.Equal(t, tt.wantChecks, response.Checks)
			}
		})
	}
}
