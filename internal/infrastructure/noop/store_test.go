package noop_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summarybot/summarybot/internal/core/ports"
	"github.com/summarybot/summarybot/internal/infrastructure/noop"
)

func TestNoopStoreNeverStores(t *testing.T) {
	s := noop.New()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k1", []byte("v1"), time.Minute))
	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "noop provides availability of the call, not of data")

	require.NoError(t, s.Delete(ctx, "k1"))
	assert.Equal(t, ports.TierHealthy, s.Health(ctx))
}

func TestNoopStoreContractErrors(t *testing.T) {
	s := noop.New()
	ctx := context.Background()

	assert.ErrorIs(t, s.Set(ctx, "k1", nil, 0), ports.ErrInvalidTTL)
	assert.ErrorIs(t, s.Delete(ctx, ""), ports.ErrInvalidKey)
	_, _, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, ports.ErrInvalidKey)
}
