package container

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/nutrismart/planner/internal/application/ai"
	"github.com/nutrismart/planner/internal/infrastructure/ai/gemini"
	"github.com/nutrismart/planner/internal/infrastructure/ai/openai"
	"github.com/nutrismart/planner/internal/infrastructure/config"
	"github.com/nutrismart/planner/internal/infrastructure/http/apiserver"
	"github.com/nutrismart/planner/internal/ports/outbound"
)

func writeConfig(t *testing.T, body string) ConfigPath {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return ConfigPath(path)
}

const baseConfig = `
app:
  log_level: error
rate_limit:
  enable: false
monitoring:
  enable_metrics: true
`

func TestModule_WiresMemoryStack(t *testing.T) {
	var (
		server  *apiserver.Server
		gateway *ai.Gateway
		store   outbound.KeyValueStore
	)

	app := fxtest.New(t,
		fx.Supply(writeConfig(t, baseConfig+"storage:\n  driver: memory\n")),
		Module,
		fx.Populate(&server, &gateway, &store),
	)
	require.NoError(t, app.Err())

	assert.False(t, gateway.Configured())
	assert.NotNil(t, store)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestModule_WiresSQLiteStack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "planner.db")
	var server *apiserver.Server

	app := fxtest.New(t,
		fx.Supply(writeConfig(t, baseConfig+"storage:\n  driver: sqlite\n  sqlite_path: "+dbPath+"\n")),
		Module,
		fx.Populate(&server),
	)
	require.NoError(t, app.Err())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_sql_open_connections")
}

func TestModule_InstallsTracerProviderWhenTracingEnabled(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	app := fxtest.New(t,
		fx.Supply(writeConfig(t, baseConfig+`  enable_tracing: true
  otlp_endpoint: localhost:4318
  sampling_rate: 1
storage:
  driver: memory
`)),
		Module,
	)
	require.NoError(t, app.Err())

	provider, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok, "expected SDK tracer provider, got %T", otel.GetTracerProvider())
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
}

func TestNewModelClient(t *testing.T) {
	tests := []struct {
		name     string
		ai       config.AIConfig
		wantNil  bool
		wantType interface{}
	}{
		{"no credential", config.AIConfig{Provider: config.ProviderGemini}, true, nil},
		{"openai", config.AIConfig{Provider: config.ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o-mini"}, false, &openai.Client{}},
		{"ollama without key", config.AIConfig{Provider: config.ProviderOllama, BaseURL: "http://localhost:11434", Model: "llama3"}, false, &openai.Client{}},
		{"gemini", config.AIConfig{Provider: config.ProviderGemini, APIKey: "test-key"}, false, &gemini.Client{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{AI: tt.ai}

			client, err := NewModelClient(cfg, zaptest.NewLogger(t))
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, client)
				return
			}
			assert.IsType(t, tt.wantType, client)
		})
	}
}

func TestNewTokenManager_GeneratesSecretOutsideProduction(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{SessionTTL: time.Hour}}

	tokens, err := NewTokenManager(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, tokens)
}
