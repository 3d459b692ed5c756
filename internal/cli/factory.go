package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/dramaflow"
	"github.com/aretw0/dramaflow/internal/config"
	"github.com/aretw0/dramaflow/pkg/adapters/gemini"
	"github.com/aretw0/dramaflow/pkg/adapters/openai"
	"github.com/aretw0/dramaflow/pkg/adapters/redis"
	"github.com/aretw0/dramaflow/pkg/adapters/throttle"
	"github.com/aretw0/dramaflow/pkg/agent"
	"github.com/aretw0/dramaflow/pkg/catalog"
	"github.com/aretw0/dramaflow/pkg/observability"
	"github.com/aretw0/dramaflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runtime is a fully wired engine plus the resources it holds.
type Runtime struct {
	Engine *dramaflow.Engine
	// Metrics serves the Prometheus registry; nil when metrics are disabled.
	Metrics http.Handler

	closers []func() error
}

// Close releases external connections.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewProvider builds the completion provider selected by cfg, throttled when a rate limit is set.
func NewProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.CompletionProvider, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	var provider ports.CompletionProvider
	switch cfg.Provider {
	case config.ProviderGemini:
		opts := []gemini.Option{gemini.WithModel(cfg.ModelName()), gemini.WithLogger(logger)}
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		p, err := gemini.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		provider = p
	case config.ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.ModelName()), openai.WithLogger(logger)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider = openai.New(cfg.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	return throttle.New(provider, cfg.RateLimit, cfg.RateBurst), nil
}

// Build wires an engine from cfg. A nil provider is built with NewProvider.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, provider ports.CompletionProvider) (*Runtime, error) {
	if provider == nil {
		p, err := NewProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	rt := &Runtime{}
	opts := []dramaflow.Option{
		dramaflow.WithLogger(logger),
		dramaflow.WithLifecycleHooks(observability.LogHooks(logger)),
		dramaflow.WithTemperature(cfg.Temperature),
		dramaflow.WithTimeout(cfg.Timeout),
		dramaflow.WithConfidenceThreshold(cfg.ConfidenceThreshold),
	}

	if cfg.PersonasPath != "" {
		personas, err := agent.LoadPersonas(cfg.PersonasPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dramaflow.WithPersonas(personas))
	}
	if cfg.CatalogPath != "" {
		items, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dramaflow.WithCatalog(items))
	}

	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, dramaflow.WithLifecycleHooks(m.Hooks()))
		rt.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	if cfg.RedisURL != "" {
		client, err := redis.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		opts = append(opts, dramaflow.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)))
		logger.Info("Distributed session lock enabled", "redis", client.Options().Addr)
		// Sessions still live in this process's memory store, so the lock only orders work
		// for stores shared between replicas.
		logger.Warn("Session store is per-process; the Redis lock does not share sessions across replicas",
			"store", "memory",
		)
	}

	eng, err := dramaflow.New(provider, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = eng
	return rt, nil
}
