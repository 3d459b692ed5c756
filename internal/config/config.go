// Package config resolves the runtime settings of the dramaflow binaries.
//
// Precedence, lowest first: built-in defaults, the YAML file, .env, the process environment.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/sanitize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel = "gpt-4o"
	DefaultGeminiModel = "gemini-2.5-flash"

	envPrefix = "DRAMAFLOW_"
)

// Config holds every tunable of the server and the CLI.
type Config struct {
	Addr string `yaml:"addr"`

	Provider string `yaml:"provider"`
	// Model is empty to use the provider default, see ModelName.
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	// APIKey is read from the environment only.
	APIKey   string `yaml:"-"`

	Temperature         float32       `yaml:"temperature"`
	Timeout             time.Duration `yaml:"timeout"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	// RateLimit caps provider calls per second. Zero disables throttling.
	RateLimit           float64       `yaml:"rate_limit"`
	RateBurst           int           `yaml:"rate_burst"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxInputSize   int      `yaml:"max_input_size"`
	RedisURL       string   `yaml:"redis_url"`
	PersonasPath   string   `yaml:"personas"`
	CatalogPath    string   `yaml:"catalog"`
	Metrics        bool     `yaml:"metrics"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Addr:        ":8000",
		Provider:    ProviderOpenAI,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
		RateBurst:   1,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://localhost:3001",
		},
		MaxInputSize: sanitize.DefaultMaxInputSize,
		Metrics:      true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path may be empty. Missing .env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays a YAML document. Keys absent from data keep their current value.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overlays DRAMAFLOW_* variables and the provider API key.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	strs := map[string]*string{
		"ADDR":       &c.Addr,
		"PROVIDER":   &c.Provider,
		"MODEL":      &c.Model,
		"BASE_URL":   &c.BaseURL,
		"REDIS_URL":  &c.RedisURL,
		"PERSONAS":   &c.PersonasPath,
		"CATALOG":    &c.CatalogPath,
		"LOG_LEVEL":  &c.Log.Level,
		"LOG_FORMAT": &c.Log.Format,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("TEMPERATURE"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return envError("TEMPERATURE", err)
		}
		c.Temperature = float32(f)
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TIMEOUT", err)
		}
		c.Timeout = d
	}
	if v, ok := get("CONFIDENCE_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("CONFIDENCE_THRESHOLD", err)
		}
		c.ConfidenceThreshold = f
	}
	if v, ok := get("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("RATE_LIMIT", err)
		}
		c.RateLimit = f
	}
	if v, ok := get("RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("RATE_BURST", err)
		}
		c.RateBurst = n
	}
	if v, ok := get("MAX_INPUT_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("MAX_INPUT_SIZE", err)
		}
		c.MaxInputSize = n
	}
	if v, ok := get("METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("METRICS", err)
		}
		c.Metrics = b
	}
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}

	if v, ok := get("API_KEY"); ok {
		c.APIKey = v
	} else if v, ok := lookup(c.KeyVariable()); ok && strings.TrimSpace(v) != "" {
		c.APIKey = strings.TrimSpace(v)
	}
	return nil
}

// ModelName returns Model, or the default model of the selected provider.
func (c *Config) ModelName() string {
	switch {
	case c.Model != "":
		return c.Model
	case c.Provider == ProviderGemini:
		return DefaultGeminiModel
	default:
		return DefaultOpenAIModel
	}
}

// KeyVariable names the provider-specific environment variable holding the API key.
func (c *Config) KeyVariable() string {
	if c.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// Validate rejects settings no component could run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderGemini))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %.2f out of range [0,2]", c.Temperature))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("confidence_threshold %.2f out of range [0,1]", c.ConfidenceThreshold))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate_burst must be at least 1"))
	}
	if c.MaxInputSize <= 0 {
		errs = append(errs, fmt.Errorf("max_input_size must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RequireAPIKey fails when no key was found for the selected provider.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key for provider %s: set %s or %sAPI_KEY", c.Provider, c.KeyVariable(), envPrefix)
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
