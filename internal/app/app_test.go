package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  10 << 20,
			RateLimit:       config.RateLimitConfig{Enabled: false},
		},
		Logging: config.LoggingConfig{Level: "info", Output: "console"},
		Pipeline: config.PipelineConfig{
			MinTrainingDays: 100,
			ForecastHorizon: 30,
			WarnHorizonDays: 365,
			NullPolicy:      "zero",
			TestFraction:    0.2,
		},
	}
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics, err := infrastructure.InitializeMetrics(logger)
	require.NoError(t, err)

	cfg := testConfig()
	app := &Application{
		Config:          cfg,
		Logger:          logger,
		Metrics:         metrics,
		ForecastService: services.NewForecastService(cfg.Pipeline, logger, metrics),
	}
	app.setupRouter()
	app.createServer()
	return app
}

func TestRouterEndpoints(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "metrics scrape", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "forecast requires multipart", method: http.MethodPost, path: "/api/forecast", wantStatus: http.StatusBadRequest},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestStopShutsDownCleanly(t *testing.T) {
	app := newTestApplication(t)

	// Shutdown on a never-started server is a no-op; Stop must still
	// flush metrics and release the log file sink without error.
	require.NoError(t, app.Stop(context.Background()))
}

func TestCreateServer(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, 15*time.Second, app.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, app.Server.WriteTimeout)
}
