// Package throttle rate-limits calls to a completion provider.
package throttle

import (
	"context"
	"fmt"

	"github.com/aretw0/dramaflow/pkg/ports"
	"golang.org/x/time/rate"
)

// Provider waits for a token before forwarding each request.
type Provider struct {
	next    ports.CompletionProvider
	limiter *rate.Limiter
}

// New allows perSecond requests per second with bursts of burst.
// A non-positive perSecond returns next unchanged.
func New(next ports.CompletionProvider, perSecond float64, burst int) ports.CompletionProvider {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &Provider{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Complete blocks until the limiter admits the call or ctx is done.
func (p *Provider) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttled: %w", err)
	}
	return p.next.Complete(ctx, req)
}
