package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"homerank/internal/adapters/cache"
	"homerank/internal/adapters/repositories"
	"homerank/internal/config"
	"homerank/internal/platform/db"
	"homerank/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const usage = `usage: dbtool <command>

commands:
  init   create the result cache schema (postgres when DATABASE_URL is set, else sqlite at CACHE_PATH)
  seed   load DESTINATIONS_PATH and ORIGINS_PATH into the sqlite store at LOCATIONS_DB_PATH`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}
	obs.SetupLogger(config.Get("LOG_LEVEL", "info"), config.Get("ENVIRONMENT", "development"))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "init":
		err = initCache(ctx)
	case "seed":
		err = seedLocations(ctx)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(os.Args[1] + " failed")
	}
}

func initCache(ctx context.Context) error {
	if databaseURL := strings.TrimSpace(config.Get("DATABASE_URL", "")); databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		log.Info().Msg("Initializing postgres cache schema...")
		if err := cache.InitPostgresSchema(ctx, conn); err != nil {
			return err
		}
		log.Info().Msg("Schema ready.")
		return nil
	}

	path := config.Get("CACHE_PATH", "data/cache.db")
	conn, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Str("path", path).Msg("Initializing sqlite cache schema...")
	if err := cache.InitSqliteSchema(ctx, conn); err != nil {
		return err
	}
	log.Info().Msg("Schema ready.")
	return nil
}

func seedLocations(ctx context.Context) error {
	path := config.Get("LOCATIONS_DB_PATH", "data/locations.db")
	conn, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	src := repositories.NewJSONLocationRepository(
		config.Get("DESTINATIONS_PATH", "data/destinations.json"),
		config.Get("ORIGINS_PATH", "data/origins.json"),
	)

	log.Info().Str("path", path).Msg("Seeding locations...")
	if err := repositories.Seed(ctx, conn, src); err != nil {
		return err
	}
	log.Info().Msg("Seeding complete.")
	return nil
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir for %q: %w", path, err)
	}
	return db.OpenSQLite(path)
}
