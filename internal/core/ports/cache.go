package ports

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations. Invalid keys and TTLs are contract
// violations and are returned to the caller immediately; they are never
// absorbed the way tier outages are.
var (
	ErrInvalidKey          = errors.New("cache: key is invalid")
	ErrKeyTooLong          = errors.New("cache: key exceeds max length")
	ErrInvalidTTL          = errors.New("cache: ttl must be positive")
	ErrAllTiersUnavailable = errors.New("cache: no tier accepted the write")
)

// TierHealth reports the result of a tier probe.
type TierHealth int

const (
	TierHealthy TierHealth = iota
	TierDegraded
	TierUnreachable
)

func (h TierHealth) String() string {
	switch h {
	case TierHealthy:
		return "healthy"
	case TierDegraded:
		return "degraded"
	default:
		return "unreachable"
	}
}

// TierStore is one key-value storage backend in the fallback chain.
//
// Result mapping:
//   - Get returns (value, true, nil) on a hit, (nil, false, nil) on a miss and
//     (nil, false, err) when the backing medium cannot be reached.
//   - Set and Delete return an error only for unavailability or a contract
//     violation; deleting an absent key is not an error.
//
// Each tier enforces the TTL it was given at Set time on its own.
// Implementations must be safe for concurrent use.
type TierStore interface {
	// Name identifies the tier in logs, metrics and health reports.
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. ttl <= 0 is ErrInvalidTTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Health is a cheap, side-effect-free probe of the backing medium.
	Health(ctx context.Context) TierHealth
}

// Cache defines the key-value cache contract consumed by the bot commands.
// Implementations should degrade gracefully (returning an error without
// crashing callers) so that command logic can fall back to doing the
// expensive summarization work fresh.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 means the configured default).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
