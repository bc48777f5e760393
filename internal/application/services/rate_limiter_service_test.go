package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	impl "github.com/summarybot/summarybot/internal/application/services"
	"github.com/summarybot/summarybot/internal/core/ports"
)

func newLimiter(user, channel time.Duration) *impl.RateLimiterService {
	return impl.NewRateLimiterService(&impl.RateLimiterConfig{UserInterval: user, ChannelInterval: channel}, nil, nil)
}

func TestAllowCooldownCycle(t *testing.T) {
	limiter := newLimiter(300*time.Second, 0)
	t0 := time.Unix(1_700_000_000, 0)

	d, err := limiter.Allow(ports.ScopeUser, "u1", t0)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ports.ScopeUser, "u1", t0.Add(100*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 200*time.Second, d.RetryAfter)

	d, err = limiter.Allow(ports.ScopeUser, "u1", t0.Add(300*time.Second))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAllowUnknownScope(t *testing.T) {
	limiter := newLimiter(time.Minute, time.Minute)
	_, err := limiter.Allow(ports.Scope("guild"), "g1", time.Now())
	assert.ErrorIs(t, err, ports.ErrUnknownScope)
}

func TestAllowActorsIndependent(t *testing.T) {
	limiter := newLimiter(time.Minute, 0)
	t0 := time.Unix(1_700_000_000, 0)

	d, _ := limiter.Allow(ports.ScopeUser, "u1", t0)
	assert.True(t, d.Allowed)
	d, _ = limiter.Allow(ports.ScopeUser, "u2", t0)
	assert.True(t, d.Allowed, "one actor's cooldown must not affect another")
}

func TestDisabledScopeAlwaysAllows(t *testing.T) {
	limiter := newLimiter(0, 0)
	t0 := time.Unix(1_700_000_000, 0)

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ports.ScopeUser, "u1", t0)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestAllowActionRequiresBothScopes(t *testing.T) {
	limiter := newLimiter(300*time.Second, 120*time.Second)
	t0 := time.Unix(1_700_000_000, 0)

	d, err := limiter.AllowAction("u1", "c1", t0)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	// Fresh user, cooling channel: denied by the channel scope alone.
	d, err = limiter.AllowAction("u2", "c1", t0.Add(60*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 60*time.Second, d.RetryAfter)

	// Cooling user, fresh channel: denied by the user scope alone.
	d, err = limiter.AllowAction("u1", "c2", t0.Add(100*time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 200*time.Second, d.RetryAfter)
}

func TestDeniedActionLeavesNoTrace(t *testing.T) {
	limiter := newLimiter(300*time.Second, 120*time.Second)
	t0 := time.Unix(1_700_000_000, 0)

	d, _ := limiter.AllowAction("u1", "c1", t0)
	require.True(t, d.Allowed)

	// u2 is fresh but c1 denies, so u2 must not be recorded...
	d, _ = limiter.AllowAction("u2", "c1", t0.Add(30*time.Second))
	require.False(t, d.Allowed)

	// ...and is immediately allowed on an open channel.
	d, _ = limiter.AllowAction("u2", "c2", t0.Add(31*time.Second))
	assert.True(t, d.Allowed)

	// Likewise c2 was recorded only once, by the allowed action above.
	d, _ = limiter.AllowAction("u3", "c2", t0.Add(32*time.Second))
	assert.False(t, d.Allowed, "c2 cooldown started at t0+31s")
}

func TestAllowAtomicUnderConcurrency(t *testing.T) {
	limiter := newLimiter(time.Hour, 0)
	now := time.Unix(1_700_000_000, 0)

	const n = 64
	var wg sync.WaitGroup
	allowed := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Allow(ports.ScopeUser, "u1", now)
			require.NoError(t, err)
			allowed <- d.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for a := range allowed {
		if a {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one of N simultaneous requests may pass")
}

func TestAllowActionAtomicUnderConcurrency(t *testing.T) {
	limiter := newLimiter(time.Hour, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.AllowAction("u1", "c1", now)
			require.NoError(t, err)
			if d.Allowed {
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, count)
}

func TestPruneStale(t *testing.T) {
	limiter := newLimiter(5*time.Minute, 2*time.Minute)
	t0 := time.Unix(1_700_000_000, 0)

	d, _ := limiter.AllowAction("old-user", "old-chan", t0)
	require.True(t, d.Allowed)
	d, _ = limiter.AllowAction("new-user", "new-chan", t0.Add(19*time.Minute))
	require.True(t, d.Allowed)

	// Stale after 4x the largest interval (20 minutes).
	removed := limiter.PruneStale(t0.Add(20 * time.Minute))
	assert.Equal(t, 2, removed, "both old-user and old-chan entries are stale")

	// Pruning must not shorten an active cooldown.
	d, _ = limiter.AllowAction("new-user", "new-chan", t0.Add(20*time.Minute))
	assert.False(t, d.Allowed)
}
