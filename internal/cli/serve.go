package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/dramaflow/internal/config"
	httpAdapter "github.com/aretw0/dramaflow/pkg/adapters/http"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful drain of in-flight requests.
const ShutdownTimeout = 5 * time.Second

// NewHTTPServer mounts the REST, SSE and WebSocket API of rt on cfg.Addr.
func NewHTTPServer(cfg *config.Config, rt *Runtime, logger *slog.Logger) *http.Server {
	opts := []httpAdapter.Option{
		httpAdapter.WithAllowedOrigins(cfg.AllowedOrigins),
		httpAdapter.WithMaxInputSize(cfg.MaxInputSize),
		httpAdapter.WithLogger(logger),
	}
	if rt.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetricsHandler(rt.Metrics))
	}
	api := httpAdapter.NewHandler(rt.Engine, opts...)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never finish on their own.
	srv.RegisterOnShutdown(api.Streams.CloseAll)
	return srv
}

// Serve runs srv until ctx is done, then drains it. A nil ln listens on srv.Addr.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting Dramaflow Server", "address", srv.Addr)
		var err error
		if ln != nil {
			err = srv.Serve(ln)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		logger.Info("Dramaflow Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
