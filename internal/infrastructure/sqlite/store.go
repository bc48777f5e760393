package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/summarybot/summarybot/internal/core/ports"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS summary_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_summary_cache_expires ON summary_cache (expires_at);
`

// Store implements ports.TierStore on a local SQLite file. It survives process
// restarts. SQLite has no native TTL, so the expiry instant is stored next to
// the value and enforced on read.
type Store struct {
	db      *sqlx.DB
	timeNow func() time.Time
}

// New opens (creating if needed) the cache database at path.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// A single writer keeps modernc's file locking simple.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db, timeNow: time.Now}, nil
}

func (s *Store) Name() string { return "sqlite" }

type record struct {
	Value     []byte `db:"value"`
	ExpiresAt int64  `db:"expires_at"`
}

// Get implements TierStore.Get. Entries past their expiry are treated as
// absent and removed on the spot.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ports.ValidateKey(key); err != nil {
		return nil, false, err
	}
	var rec record
	err := s.db.GetContext(ctx, &rec, `SELECT value, expires_at FROM summary_cache WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.timeNow().UnixNano() >= rec.ExpiresAt {
		// Lazy cleanup; failure here does not affect the miss result.
		_, _ = s.db.ExecContext(ctx, `DELETE FROM summary_cache WHERE key = ?`, key)
		return nil, false, nil
	}
	return rec.Value, true, nil
}

// Set implements TierStore.Set with last-write-wins semantics.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return ports.ErrInvalidTTL
	}
	expiresAt := s.timeNow().Add(ttl).UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summary_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	return err
}

// Delete implements TierStore.Delete. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ports.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM summary_cache WHERE key = ?`, key)
	return err
}

// Health implements TierStore.Health.
func (s *Store) Health(ctx context.Context) ports.TierHealth {
	if err := s.db.PingContext(ctx); err != nil {
		return ports.TierUnreachable
	}
	return ports.TierHealthy
}

// PruneExpired removes every entry past its expiry. Intended for a periodic
// maintenance sweep; reads already ignore expired rows.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM summary_cache WHERE expires_at <= ?`, s.timeNow().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ ports.TierStore = (*Store)(nil)
