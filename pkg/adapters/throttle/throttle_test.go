package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dramaflow/internal/testutils"
	"github.com/aretw0/dramaflow/pkg/adapters/throttle"
	"github.com/aretw0/dramaflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	inner := &testutils.ScriptedProvider{Default: "ok"}
	assert.Same(t, inner, throttle.New(inner, 0, 1))
}

func TestProvider_Spacing(t *testing.T) {
	inner := &testutils.ScriptedProvider{Default: "ok"}
	p := throttle.New(inner, 20, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		reply, err := p.Complete(ctx, ports.CompletionRequest{Message: "m"})
		require.NoError(t, err)
		assert.Equal(t, "ok", reply)
	}
	// Burst of one, then two waits of 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, inner.Calls(), 3)
}

func TestProvider_ContextCanceled(t *testing.T) {
	inner := &testutils.ScriptedProvider{Default: "ok"}
	p := throttle.New(inner, 0.1, 1)

	_, err := p.Complete(context.Background(), ports.CompletionRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Complete(ctx, ports.CompletionRequest{})
	assert.ErrorContains(t, err, "throttled")
	assert.Len(t, inner.Calls(), 1)
}
