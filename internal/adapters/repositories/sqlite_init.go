package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"homerank/internal/domain"
)

// Initialize the SQLite location schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		weight REAL,
		group_label TEXT NOT NULL DEFAULT '',
		transport_mode TEXT NOT NULL DEFAULT '',
		departure_time_to TEXT NOT NULL DEFAULT '',
		departure_time_from TEXT NOT NULL DEFAULT '',
		day_of_week TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL
	);
	`

	createOriginsQuery := `
	CREATE TABLE IF NOT EXISTS origins (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		lat REAL,
		lon REAL
	);
	`

	statements := []string{
		createDestinationsQuery,
		createOriginsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Seed replaces the stored locations with those read from src.
func Seed(ctx context.Context, db *sql.DB, src *JSONLocationRepository) error {
	dests, err := src.ListDestinations(ctx)
	if err != nil {
		return fmt.Errorf("seed locations: %w", err)
	}
	origins, err := src.ListOrigins(ctx)
	if err != nil {
		return fmt.Errorf("seed locations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"destinations", "origins"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("seed locations: clear %s: %w", table, err)
		}
	}

	destQuery := `
	INSERT INTO destinations (
		position,
		name,
		weight,
		group_label,
		transport_mode,
		departure_time_to,
		departure_time_from,
		day_of_week,
		lat,
		lon
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	for i, d := range dests {
		lat, lon := nullCoords(d.Coords)
		_, err := tx.ExecContext(ctx, destQuery,
			i, d.Name, nullFloat(d.Weight), d.Group, string(d.Profile),
			d.DepartureTimeTo, d.DepartureTimeFrom, d.DayOfWeek, lat, lon,
		)
		if err != nil {
			return fmt.Errorf("seed locations: insert destination %q: %w", d.Name, err)
		}
	}

	originQuery := `INSERT INTO origins (position, name, lat, lon) VALUES (?, ?, ?, ?);`
	for i, o := range origins {
		lat, lon := nullCoords(o.Coords)
		if _, err := tx.ExecContext(ctx, originQuery, i, o.Name, lat, lon); err != nil {
			return fmt.Errorf("seed locations: insert origin %q: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullCoords(c *domain.Coordinates) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lon, Valid: true}
}

func coordsFrom(lat, lon sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
}
