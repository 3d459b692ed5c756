package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Empty(t, cfg.Model)
	assert.Equal(t, DefaultOpenAIModel, cfg.ModelName())
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-6)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Len(t, cfg.AllowedOrigins, 3)
	assert.Empty(t, cfg.APIKey)
	assert.Error(t, cfg.RequireAPIKey())
}

func TestMerge(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Merge([]byte(`
provider: gemini
timeout: 15s
allowed_origins: ["https://drama.example"]
log:
  level: debug
`)))
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, DefaultGeminiModel, cfg.ModelName())
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"https://drama.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "untouched keys keep defaults")

	assert.Error(t, cfg.Merge([]byte("timeout: [")))
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, c *Config)
		wantErr string
	}{
		{
			name: "Overrides",
			env: map[string]string{
				"DRAMAFLOW_ADDR":            ":9000",
				"DRAMAFLOW_TEMPERATURE":     "0.2",
				"DRAMAFLOW_TIMEOUT":         "5s",
				"DRAMAFLOW_RATE_LIMIT":      "3.5",
				"DRAMAFLOW_ALLOWED_ORIGINS": " http://a.example , ,http://b.example",
				"DRAMAFLOW_METRICS":         "false",
				"DRAMAFLOW_MAX_INPUT_SIZE":  "100",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ":9000", c.Addr)
				assert.InDelta(t, 0.2, c.Temperature, 1e-6)
				assert.Equal(t, 5*time.Second, c.Timeout)
				assert.InDelta(t, 3.5, c.RateLimit, 1e-9)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.AllowedOrigins)
				assert.False(t, c.Metrics)
				assert.Equal(t, 100, c.MaxInputSize)
			},
		},
		{
			name: "Blank values are ignored",
			env:  map[string]string{"DRAMAFLOW_MODEL": "  "},
			check: func(t *testing.T, c *Config) {
				assert.Empty(t, c.Model)
			},
		},
		{
			name: "OpenAI key",
			env:  map[string]string{"OPENAI_API_KEY": "sk-openai", "GEMINI_API_KEY": "g-key"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "sk-openai", c.APIKey)
			},
		},
		{
			name: "Gemini key follows the provider",
			env:  map[string]string{"DRAMAFLOW_PROVIDER": "gemini", "OPENAI_API_KEY": "sk-openai", "GEMINI_API_KEY": "g-key"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "g-key", c.APIKey)
				assert.NoError(t, c.RequireAPIKey())
			},
		},
		{
			name: "Explicit key wins",
			env:  map[string]string{"DRAMAFLOW_API_KEY": "explicit", "OPENAI_API_KEY": "sk-openai"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "explicit", c.APIKey)
			},
		},
		{
			name:    "Bad duration",
			env:     map[string]string{"DRAMAFLOW_TIMEOUT": "soon"},
			wantErr: "DRAMAFLOW_TIMEOUT",
		},
		{
			name:    "Bad bool",
			env:     map[string]string{"DRAMAFLOW_METRICS": "maybe"},
			wantErr: "DRAMAFLOW_METRICS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(env(tt.env))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"Unknown provider", func(c *Config) { c.Provider = "llama" }},
		{"Temperature", func(c *Config) { c.Temperature = 3 }},
		{"Timeout", func(c *Config) { c.Timeout = 0 }},
		{"Threshold", func(c *Config) { c.ConfidenceThreshold = 1.5 }},
		{"Negative rate", func(c *Config) { c.RateLimit = -1 }},
		{"Burst", func(c *Config) { c.RateLimit = 1; c.RateBurst = 0 }},
		{"Input size", func(c *Config) { c.MaxInputSize = 0 }},
		{"Log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "dramaflow.yaml")
	require.NoError(t, os.WriteFile(file, []byte("model: from-file\naddr: \":7000\"\n"), 0o600))
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("DRAMAFLOW_MODEL=from-dotenv\nOPENAI_API_KEY=sk-dotenv\n"), 0o600))

	// Registered with t.Setenv so the values godotenv writes are restored afterwards.
	for _, k := range []string{"DRAMAFLOW_MODEL", "OPENAI_API_KEY", "DRAMAFLOW_API_KEY", "DRAMAFLOW_ADDR"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(file, dotenv)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Model)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "sk-dotenv", cfg.APIKey)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Load("", filepath.Join(dir, "no.env"))
	assert.NoError(t, err, "a missing .env is not an error")
}
