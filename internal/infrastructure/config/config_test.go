package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apascualco/campusgate/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load("1.0.0", "abc", "today")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "http://localhost:3002", cfg.AuthServiceURL)
	assert.Equal(t, "http://localhost:3008", cfg.PlagiarismServiceURL)
	assert.Equal(t, time.Duration(0), cfg.AggregationTimeout)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.LogFormat)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 3*time.Second, cfg.RedisTimeout)
	assert.Equal(t, 10, cfg.RateLimitLoginRPM)
	assert.Equal(t, "noop", cfg.TraceExporter)
	assert.Equal(t, 64, cfg.TraceBatchSize)
	assert.Equal(t, 5*time.Second, cfg.TraceFlushInterval)
	assert.Equal(t, "1.0.0", cfg.Version)
}

func TestLoad_TraceSettings(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("TRACE_EXPORTER", "otlp")
	t.Setenv("TRACE_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("TRACE_OTLP_HEADERS", "authorization:Bearer abc,x-team:campus")
	t.Setenv("TRACE_BATCH_SIZE", "16")
	t.Setenv("TRACE_FLUSH_INTERVAL", "250ms")

	cfg, err := Load("dev", "none", "unknown")
	require.NoError(t, err)

	assert.Equal(t, "otlp", cfg.TraceExporter)
	assert.Equal(t, map[string]string{"authorization": "Bearer abc", "x-team": "campus"}, cfg.TraceOTLPHeaders)
	assert.Equal(t, 16, cfg.TraceBatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.TraceFlushInterval)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.env")
	content := "PROJECT_SERVICE_URL=http://project.internal:80\nAUTH_SERVICE_URL=http://from-file:1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ENV_FILE", path)
	t.Setenv("AUTH_SERVICE_URL", "http://from-env:2")
	// godotenv writes into the process environment; restore it after the test.
	t.Setenv("PROJECT_SERVICE_URL", "")
	os.Unsetenv("PROJECT_SERVICE_URL")

	cfg, err := Load("dev", "none", "unknown")
	require.NoError(t, err)

	assert.Equal(t, "http://project.internal:80", cfg.ProjectServiceURL)
	assert.Equal(t, "http://from-env:2", cfg.AuthServiceURL)
}

func TestServiceURLs_CoversEveryService(t *testing.T) {
	cfg := &Config{AuthServiceURL: "a", ProjectServiceURL: "p"}

	urls := cfg.ServiceURLs()
	for _, name := range domain.ServiceNames() {
		_, ok := urls[name]
		assert.True(t, ok, "missing %s", name)
	}
	assert.Equal(t, "p", urls[domain.ServiceProject])
}
