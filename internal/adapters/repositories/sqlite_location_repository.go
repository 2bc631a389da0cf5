package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"homerank/internal/domain"
)

// SQLite-backed implementation of the LocationRepository port.
type SqliteLocationRepository struct{ DB *sql.DB }

func NewSqliteLocationRepository(db *sql.DB) *SqliteLocationRepository {
	return &SqliteLocationRepository{DB: db}
}

// Return all destinations in their stored order.
func (s *SqliteLocationRepository) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite location repository: DB is nil")
	}

	query := `
	SELECT
		name,
		weight,
		group_label,
		transport_mode,
		departure_time_to,
		departure_time_from,
		day_of_week,
		lat,
		lon
	FROM destinations
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query destinations table: %w", err)
	}
	defer rows.Close()

	dests := make([]domain.Destination, 0, 16)
	for rows.Next() {
		var (
			d        domain.Destination
			weight   sql.NullFloat64
			profile  string
			lat, lon sql.NullFloat64
		)
		err := rows.Scan(
			&d.Name, &weight, &d.Group, &profile,
			&d.DepartureTimeTo, &d.DepartureTimeFrom, &d.DayOfWeek,
			&lat, &lon,
		)
		if err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}
		if weight.Valid {
			d.Weight = domain.Weight(weight.Float64)
		}
		d.Profile = domain.Profile(profile)
		d.Coords = coordsFrom(lat, lon)
		dests = append(dests, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return dests, nil
}

// Return all origins in their stored order.
func (s *SqliteLocationRepository) ListOrigins(ctx context.Context) ([]domain.Origin, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite location repository: DB is nil")
	}

	query := `
	SELECT
		name,
		lat,
		lon
	FROM origins
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list origins: query origins table: %w", err)
	}
	defer rows.Close()

	origins := make([]domain.Origin, 0, 16)
	for rows.Next() {
		var (
			o        domain.Origin
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&o.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list origins: scan row: %w", err)
		}
		o.Coords = coordsFrom(lat, lon)
		origins = append(origins, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list origins: row iteration: %w", err)
	}

	return origins, nil
}
