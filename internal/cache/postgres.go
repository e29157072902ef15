package cache

import (
	"context"
	"fmt"
	"time"

	database "github.com/localexplorer/itinerary-api/app/db"
)

// PostgresStore is the durable relational backend, keyed by the normalized
// query signature with an absolute expiry timestamp. Expired rows are
// deleted lazily on read.
type PostgresStore struct {
	db database.Querier
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db database.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT payload, expires_at FROM query_cache WHERE cache_key = $1`
	var payload []byte
	var expiresAt time.Time
	err := p.db.QueryRow(ctx, query, key).Scan(&payload, &expiresAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if !time.Now().Before(expiresAt) {
		_ = p.Delete(ctx, key)
		return nil, false, nil
	}
	return payload, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	query := `
        INSERT INTO query_cache (cache_key, payload, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (cache_key) DO UPDATE
        SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
    `
	if _, err := p.db.Exec(ctx, query, key, payload, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM query_cache WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
