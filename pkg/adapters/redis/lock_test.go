package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dramaflow/pkg/adapters/memory"
	"github.com/aretw0/dramaflow/pkg/adapters/redis"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:resource1"), "Lock key should be set in Redis")
	assert.Equal(t, 5*time.Second, mr.TTL("test:lock:resource1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := setup(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := "shared-resource"

	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(300*time.Millisecond), time.Now(), 150*time.Millisecond, "Should block until timeout")

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()

	assert.True(t, mr.Exists("test:lock:shared-resource"))
}

func TestRedisLocker_ExpiredLockIsNotStolen(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:k", "someone-else"))

	assert.ErrorIs(t, unlock(ctx), redis.ErrLockLost)
	got, err := mr.Get("test:lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.Dial(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = redis.Dial(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestRedisLocker_SerializesSessionManagers(t *testing.T) {
	_, client := setup(t)
	store := memory.NewStore()
	ctx := context.Background()

	// Two managers share a store, as two replicas would share Redis.
	a := session.NewManager(store, session.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)))
	b := session.NewManager(store, session.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		mgr := a
		if i%2 == 1 {
			mgr = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, "shared", func(_ context.Context, s *domain.Session) error {
				s.History = append(s.History, domain.ConversationTurn{UserMessage: "m"})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := a.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, sess.History, 6)
}
