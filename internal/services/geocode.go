package services

import (
	"context"
	"errors"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"

	"github.com/rs/zerolog/log"
)

var errOutOfRange = errors.New("coordinates out of range")

// geocodeAll resolves every record without coordinates. Failures fall back
// to the sentinel (0,0) and never abort the run.
func (e *Engine) geocodeAll(ctx context.Context, dests []domain.Destination, origs []domain.Origin) {
	for i := range dests {
		if dests[i].Coords == nil {
			c := e.geocode(ctx, dests[i].Name)
			dests[i].Coords = &c
		}
	}

	for i := range origs {
		if origs[i].Coords == nil {
			c := e.geocode(ctx, origs[i].Name)
			origs[i].Coords = &c
		}
	}
}

func (e *Engine) geocode(ctx context.Context, name string) domain.Coordinates {
	e.counters.Inc(obs.GeocodeCalls)

	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	c, err := e.provider.Geocode(cctx, name)
	if err == nil && !c.Valid() {
		err = &domain.GeocodeError{Name: name, Err: errOutOfRange}
	}
	if err != nil {
		e.counters.Inc(obs.GeocodeFailures)
		log.Warn().
			Err(err).
			Str("req_id", obs.RequestID(ctx)).
			Str("name", name).
			Msg("geocoding failed, using sentinel coordinates")
		return domain.SentinelCoordinates
	}

	return c
}
