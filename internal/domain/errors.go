package domain

import (
	"errors"
	"fmt"
)

// ErrNoMatch is wrapped by GeocodeError when the service found nothing.
var ErrNoMatch = errors.New("no match")

// GeocodeError is returned when a name cannot be resolved to coordinates.
type GeocodeError struct {
	Name string
	Err  error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Name, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }

// RouteError is returned on routing transport or service failure.
type RouteError struct {
	From    Coordinates
	To      Coordinates
	Profile Profile
	Err     error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("route %s -> %s (%s): %v", e.From, e.To, e.Profile, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

type InvalidProfileError struct {
	Profile string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid transport profile %q", e.Profile)
}

// CacheUnavailableError wraps a failing cache store operation.
type CacheUnavailableError struct {
	Op  string
	Err error
}

func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable: %s: %v", e.Op, e.Err)
}

func (e *CacheUnavailableError) Unwrap() error { return e.Err }
