package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  environment: development\n"))
	require.NoError(t, err)

	assert.Equal(t, "NutriSmart Planner", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.AIConfigured())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
storage:
  driver: sqlite
  sqlite_path: /tmp/planner.db
ai:
  provider: openai
  model: gpt-4o
`)
	t.Setenv("NUTRISMART_AI_API_KEY", "sk-env")
	t.Setenv("NUTRISMART_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9100", cfg.ServerAddr())
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/planner.db", cfg.Storage.SQLitePath)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.True(t, cfg.AIConfigured())
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Name: "planner", Environment: "development"},
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Driver: DriverMemory},
			AI:      AIConfig{Provider: ProviderGemini},
			Auth:    AuthConfig{SessionTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing name", func(c *Config) { c.App.Name = "" }, "app.name"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "storage.driver"},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite }, "sqlite_path"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "postgres_dsn"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "bard" }, "ai.provider"},
		{"production without secret", func(c *Config) { c.App.Environment = "production" }, "session_secret"},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }, "session_ttl"},
		{"sampling out of range", func(c *Config) { c.Monitoring.SamplingRate = 2 }, "sampling_rate"},
		{"rate limit without budget", func(c *Config) { c.RateLimit.Enable = true }, "requests_per_min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAIConfigured_Ollama(t *testing.T) {
	cfg := &Config{AI: AIConfig{Provider: ProviderOllama}}
	assert.True(t, cfg.AIConfigured())
}

func TestWatch_WithoutFileIsNoop(t *testing.T) {
	cfg := &Config{}
	assert.NotPanics(t, func() {
		cfg.Watch(func(string) { t.Fatal("unexpected callback") })
	})
}
