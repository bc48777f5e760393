package services

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/summarybot/summarybot/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// CacheMetrics groups the prometheus collectors the cache reports into.
// Every field is optional; nil collectors are skipped.
type CacheMetrics struct {
	Hits            *prometheus.CounterVec // by tier
	Misses          prometheus.Counter
	Backfills       *prometheus.CounterVec // by tier
	TierUnavailable *prometheus.CounterVec // by tier, op
}

// FallbackCacheConfig groups configuration parameters for the fallback cache.
type FallbackCacheConfig struct {
	// DefaultTTL is applied when callers pass ttl == 0, and to backfill writes.
	DefaultTTL time.Duration
	// BackfillTimeout bounds each background backfill pass.
	BackfillTimeout time.Duration
}

// FallbackCache composes an ordered list of tier stores, highest preference
// first, into a single ports.Cache. Reads are served by the first tier that
// answers; writes fan out to every tier so a later outage of the primary tier
// does not lose data already durable in a lower one. Tier outages never reach
// the caller; only contract violations and a fully unavailable chain do.
type FallbackCache struct {
	tiers           []ports.TierStore
	defaultTTL      time.Duration
	backfillTimeout time.Duration
	logger          *logrus.Logger
	metrics         *CacheMetrics
	sf              singleflight.Group
}

// NewFallbackCache creates a fallback cache over tiers. The chain should end
// with the no-op floor tier so writes always have a home. metrics may be nil.
func NewFallbackCache(tiers []ports.TierStore, cfg *FallbackCacheConfig, logger *logrus.Logger, metrics *CacheMetrics) *FallbackCache {
	// Apply defaults
	ttl := 24 * time.Hour
	bt := 2 * time.Second
	if cfg != nil {
		if cfg.DefaultTTL > 0 {
			ttl = cfg.DefaultTTL
		}
		if cfg.BackfillTimeout > 0 {
			bt = cfg.BackfillTimeout
		}
	}
	return &FallbackCache{tiers: tiers, defaultTTL: ttl, backfillTimeout: bt, logger: logger, metrics: metrics}
}

type lookupResult struct {
	value []byte
	found bool
}

// Get returns the first hit found scanning tiers in preference order. A tier
// that cannot be reached is skipped. Concurrent gets of the same key are
// coalesced into one scan.
func (c *FallbackCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ports.ValidateKey(key); err != nil {
		return nil, false, err
	}
	res, _, _ := c.sf.Do(key, func() (any, error) {
		value, found := c.scan(ctx, key)
		return lookupResult{value: value, found: found}, nil
	})
	lr := res.(lookupResult)
	return lr.value, lr.found, nil
}

func (c *FallbackCache) scan(ctx context.Context, key string) ([]byte, bool) {
	unavailable := make([]bool, len(c.tiers))
	for i, tier := range c.tiers {
		value, ok, err := tier.Get(ctx, key)
		if err != nil {
			unavailable[i] = true
			c.observeUnavailable(tier, "get", err)
			continue
		}
		if !ok {
			continue
		}
		if c.metrics != nil && c.metrics.Hits != nil {
			c.metrics.Hits.WithLabelValues(tier.Name()).Inc()
		}
		if i > 0 {
			skip := make([]bool, i)
			copy(skip, unavailable[:i])
			go c.backfill(key, value, i, skip)
		}
		return value, true
	}
	if c.metrics != nil && c.metrics.Misses != nil {
		c.metrics.Misses.Inc()
	}
	return nil, false
}

// backfill re-writes a value found in a lower tier into every healthy tier
// above it. It runs detached from the originating request and its failures are
// swallowed; the next get will simply scan again.
func (c *FallbackCache) backfill(key string, value []byte, hitIdx int, skip []bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.backfillTimeout)
	defer cancel()
	for i := 0; i < hitIdx; i++ {
		tier := c.tiers[i]
		// Do not backfill into a tier we could not even query.
		if skip[i] {
			continue
		}
		if tier.Health(ctx) != ports.TierHealthy {
			continue
		}
		if err := tier.Set(ctx, key, value, c.defaultTTL); err != nil {
			if c.logger != nil {
				c.logger.WithFields(logrus.Fields{"tier": tier.Name(), "key": key}).WithError(err).Debug("cache backfill failed")
			}
			continue
		}
		if c.metrics != nil && c.metrics.Backfills != nil {
			c.metrics.Backfills.WithLabelValues(tier.Name()).Inc()
		}
	}
}

// Set writes to every tier in order. A tier failure does not stop the fan-out;
// the call succeeds as long as at least one tier accepted the write. With the
// no-op floor in place total failure only happens on a misconfigured chain,
// and is reported as ports.ErrAllTiersUnavailable.
func (c *FallbackCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	if ttl < 0 {
		return ports.ErrInvalidTTL
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	accepted := 0
	var errs []error
	for _, tier := range c.tiers {
		if err := tier.Set(ctx, key, value, ttl); err != nil {
			errs = append(errs, err)
			c.observeUnavailable(tier, "set", err)
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return errors.Join(append([]error{ports.ErrAllTiersUnavailable}, errs...)...)
	}
	return nil
}

// Delete removes the key from every tier, best effort. It always succeeds:
// a tier that cannot be reached will drop the entry on its own once the TTL
// passes.
func (c *FallbackCache) Delete(ctx context.Context, key string) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	for _, tier := range c.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			c.observeUnavailable(tier, "delete", err)
		}
	}
	return nil
}

func (c *FallbackCache) observeUnavailable(tier ports.TierStore, op string, err error) {
	if c.metrics != nil && c.metrics.TierUnavailable != nil {
		c.metrics.TierUnavailable.WithLabelValues(tier.Name(), op).Inc()
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"tier": tier.Name(), "op": op}).WithError(err).Debug("cache tier unavailable")
	}
}

var _ ports.Cache = (*FallbackCache)(nil)
