package noop

import (
	"context"
	"time"

	"github.com/summarybot/summarybot/internal/core/ports"
)

// Store is the stateless floor tier of the fallback chain. Get always misses,
// Set and Delete succeed without storing anything. Its presence guarantees the
// chain as a whole never reports total write failure.
type Store struct{}

func New() *Store { return &Store{} }

func (*Store) Name() string { return "noop" }

func (*Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := ports.ValidateKey(key); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func (*Store) Set(_ context.Context, key string, _ []byte, ttl time.Duration) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return ports.ErrInvalidTTL
	}
	return nil
}

func (*Store) Delete(_ context.Context, key string) error {
	return ports.ValidateKey(key)
}

func (*Store) Health(context.Context) ports.TierHealth {
	return ports.TierHealthy
}

var _ ports.TierStore = (*Store)(nil)
