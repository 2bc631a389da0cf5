package ports

import (
	"context"
	"homerank/internal/domain"
)

// Port: a boundary for loading the records of a scoring run.
type LocationRepository interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	ListOrigins(ctx context.Context) ([]domain.Origin, error)
}
