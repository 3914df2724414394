package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/app"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/config"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            freePort(t),
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		AI: config.AIConfig{
			Models:      []string{"openai/gpt-4o-mini"},
			BaseURL:     "https://openrouter.ai/api/v1",
			Timeout:     time.Second,
			MaxTokens:   100,
			Temperature: 0.7,
			MaxRetries:  1,
		},
		Audit:     config.AuditConfig{Enabled: true, Workers: 1, BufferSize: 4},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 10, IdleTTL: time.Minute},
		Observability: config.ObservabilityConfig{
			LogLevel:  "error",
			LogFormat: "json",
		},
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr string
	}{
		{name: "json logger", level: "info", format: "json"},
		{name: "console logger", level: "debug", format: "console"},
		{name: "invalid log level", level: "invalid", format: "json", wantErr: "invalid log level"},
		{name: "invalid log format", level: "info", format: "xml", wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Observability.LogLevel = tt.level
			cfg.Observability.LogFormat = tt.format

			logger, err := initLogger(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, logger)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			_ = logger.Sync()
		})
	}
}

func TestNewServer(t *testing.T) {
	cfg := testConfig(t)
	srv := newServer(cfg, http.NotFoundHandler())

	assert.Equal(t, cfg.Server.Address(), srv.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, srv.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, srv.WriteTimeout)
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := testConfig(t)
	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	srv := newServer(cfg, routes.SetupRoutes(deps))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, deps) }()

	url := "http://" + cfg.Server.Address() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServe_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := testConfig(t)
	cfg.Server.Port = l.Addr().(*net.TCPAddr).Port

	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = serve(context.Background(), newServer(cfg, routes.SetupRoutes(deps)), deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}
