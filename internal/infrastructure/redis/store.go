package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/summarybot/summarybot/internal/core/ports"
)

// Store implements ports.TierStore on top of a Redis client. Expiry is
// delegated to Redis' own TTL mechanism. Every operation runs under a
// caller-configured per-call timeout so a stalled connection degrades the tier
// instead of stalling the whole fallback chain.
type Store struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix      string
	callTimeout time.Duration
}

// NewStore creates a new Redis-backed tier. callTimeout bounds each round
// trip; zero disables the bound.
func NewStore(r redis.Cmdable, prefix string, callTimeout time.Duration) *Store {
	return &Store{r: r, prefix: prefix, callTimeout: callTimeout}
}

func (s *Store) Name() string { return "redis" }

func (s *Store) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *Store) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// Get implements TierStore.Get. redis.Nil maps to a miss; any other error
// means the tier is unavailable.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ports.ValidateKey(key); err != nil {
		return nil, false, err
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	val, err := s.r.Get(ctx, s.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements TierStore.Set.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return ports.ErrInvalidTTL
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.r.Set(ctx, s.namespaced(key), value, ttl).Err()
}

// Delete implements TierStore.Delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.r.Del(ctx, s.namespaced(key)).Err()
}

// Health implements TierStore.Health via PING.
func (s *Store) Health(ctx context.Context) ports.TierHealth {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.r.Ping(ctx).Err(); err != nil {
		return ports.TierUnreachable
	}
	return ports.TierHealthy
}

var _ ports.TierStore = (*Store)(nil)
