package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"homerank/internal/platform/db"
	"homerank/internal/ports"

	"github.com/redis/go-redis/v9"
)

type Backend string

const (
	BackendNone     Backend = "none"
	BackendMemory   Backend = "memory"
	BackendSqlite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

type Settings struct {
	Backend       Backend
	Path          string
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Open connects the configured cache store. The returned close func is
// never nil. BackendNone yields a nil store, which disables caching.
func Open(ctx context.Context, s Settings) (ports.CacheStore, func() error, error) {
	noop := func() error { return nil }

	switch Backend(strings.ToLower(string(s.Backend))) {
	case BackendNone, "":
		return nil, noop, nil

	case BackendMemory:
		return NewMemoryStore(), noop, nil

	case BackendSqlite:
		if dir := filepath.Dir(s.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("open sqlite cache: create dir %q: %w", dir, err)
			}
		}
		conn, err := db.OpenSQLite(s.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite cache: %w", err)
		}
		if err := InitSqliteSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, fmt.Errorf("open sqlite cache: %w", err)
		}
		return NewSqliteStore(conn), conn.Close, nil

	case BackendPostgres:
		if strings.TrimSpace(s.DatabaseURL) == "" {
			return nil, noop, fmt.Errorf("open postgres cache: DATABASE_URL is required")
		}
		conn, err := db.Open(s.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres cache: %w", err)
		}
		if err := InitPostgresSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, fmt.Errorf("open postgres cache: %w", err)
		}
		return NewSQLStore(conn), conn.Close, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     s.RedisAddress,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("open redis cache: connection failed: %w", err)
		}
		return NewRedisStore(client, s.TTL), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("open cache: unknown backend %q", s.Backend)
	}
}
