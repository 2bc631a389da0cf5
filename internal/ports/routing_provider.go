package ports

import (
	"context"
	"homerank/internal/domain"
)

// Contract for resolving place names and computing point-to-point routes.
type RoutingProvider interface {
	// Stable identity of the backing service. Part of every cache fingerprint.
	Name() string
	// Resolve a place name to coordinates. Fails with *domain.GeocodeError.
	Geocode(ctx context.Context, name string) (domain.Coordinates, error)
	// Compute a single leg. Fails with *domain.RouteError or
	// *domain.InvalidProfileError; a result without time means no route.
	Route(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error)
}
