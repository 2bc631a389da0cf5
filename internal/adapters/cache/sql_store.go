package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
)

// SQLStore is a PostgreSQL-backed cache store used through the pgx
// database/sql driver.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Get(ctx context.Context, fingerprint string) (_ *domain.CacheEntry, err error) {
	defer obs.Time(ctx, "cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql cache: db is nil")
	}

	entry := &domain.CacheEntry{Fingerprint: fingerprint}
	var payload, metadata []byte

	err = s.DB.QueryRowContext(ctx, `
	SELECT payload, metadata, created_at
    FROM cache_entries
    WHERE fingerprint = $1;
	`, fingerprint).Scan(&payload, &metadata, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: query cache_entries table: %w", err)
	}

	entry.Payload = json.RawMessage(payload)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("get cache entry: decode metadata: %w", err)
		}
	}

	return entry, nil
}

func (s *SQLStore) Put(ctx context.Context, entry domain.CacheEntry) (err error) {
	defer obs.Time(ctx, "cache.sql.Put")(&err)

	if s.DB == nil {
		return errors.New("sql cache: db is nil")
	}

	if strings.TrimSpace(entry.Fingerprint) == "" {
		return errors.New("insert cache entry: empty fingerprint")
	}

	metadata, err := encodeMetadata(entry.Metadata)
	if err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO cache_entries (fingerprint, payload, metadata, created_at)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (fingerprint) DO UPDATE
	SET payload = EXCLUDED.payload,
		metadata = EXCLUDED.metadata,
		created_at = EXCLUDED.created_at;
	`, entry.Fingerprint, string(entry.Payload), metadata, createdAt(entry))
	if err != nil {
		return fmt.Errorf("insert cache entry fingerprint=%q: %w", entry.Fingerprint, err)
	}

	return nil
}
