package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
)

// SQLite backed cache store. Writes replace any existing entry for the
// same fingerprint.
type SqliteStore struct {
	DB *sql.DB
}

func NewSqliteStore(db *sql.DB) *SqliteStore {
	return &SqliteStore{DB: db}
}

func (s *SqliteStore) Get(ctx context.Context, fingerprint string) (_ *domain.CacheEntry, err error) {
	defer obs.Time(ctx, "cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite cache: db is nil")
	}

	var payload, createdAt string
	var metadata sql.NullString
	err = s.DB.QueryRowContext(ctx, `
	SELECT
        payload,
        metadata,
        created_at
    FROM cache_entries
    WHERE fingerprint = ?;
	`, fingerprint).Scan(&payload, &metadata, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: query cache_entries table: %w", err)
	}

	entry := &domain.CacheEntry{
		Fingerprint: fingerprint,
		Payload:     json.RawMessage(payload),
	}

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("get cache entry: decode metadata: %w", err)
		}
	}

	entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("get cache entry: parse created_at %q: %w", createdAt, err)
	}

	return entry, nil
}

func (s *SqliteStore) Put(ctx context.Context, entry domain.CacheEntry) (err error) {
	defer obs.Time(ctx, "cache.sqlite.Put")(&err)

	if s.DB == nil {
		return errors.New("sqlite cache: db is nil")
	}

	if strings.TrimSpace(entry.Fingerprint) == "" {
		return errors.New("insert cache entry: empty fingerprint")
	}

	metadata, err := encodeMetadata(entry.Metadata)
	if err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO cache_entries (
        fingerprint,
        payload,
        metadata,
        created_at
    )
    VALUES (?, ?, ?, ?);
	`, entry.Fingerprint, string(entry.Payload), metadata, createdAt(entry).Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert cache entry fingerprint=%q: %w", entry.Fingerprint, err)
	}

	return nil
}

// encodeMetadata returns nil for empty metadata so the column stays NULL.
func encodeMetadata(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func createdAt(entry domain.CacheEntry) time.Time {
	if entry.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return entry.CreatedAt.UTC()
}
