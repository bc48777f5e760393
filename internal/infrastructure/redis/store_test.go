package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summarybot/summarybot/internal/core/ports"
)

// unreachableStore points at a port nothing listens on, which is how this tier
// looks during a Redis outage.
func unreachableStore() *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewStore(client, "summarybot", 100*time.Millisecond)
}

func TestRedisStoreContractErrorsBeforeDialing(t *testing.T) {
	s := NewStore(nil, "", time.Second)
	ctx := context.Background()

	_, _, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, ports.ErrInvalidKey)
	assert.ErrorIs(t, s.Set(ctx, " ", []byte("v"), time.Minute), ports.ErrInvalidKey)
	assert.ErrorIs(t, s.Set(ctx, "k1", []byte("v"), 0), ports.ErrInvalidTTL)
	assert.ErrorIs(t, s.Delete(ctx, "a\nb"), ports.ErrInvalidKey)
}

func TestRedisStoreNamespacing(t *testing.T) {
	assert.Equal(t, "summarybot:k1", NewStore(nil, "summarybot", 0).namespaced("k1"))
	assert.Equal(t, "k1", NewStore(nil, "", 0).namespaced("k1"))
}

func TestRedisStoreOutageReportsUnavailable(t *testing.T) {
	s := unreachableStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k1")
	require.Error(t, err, "an outage is an error, not a miss")
	assert.False(t, ok)

	assert.Error(t, s.Set(ctx, "k1", []byte("v1"), time.Minute))
	assert.Equal(t, ports.TierUnreachable, s.Health(ctx))
}
