package services

import (
	"context"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"

	"github.com/rs/zerolog/log"
)

// scoreOrigin computes the weighted round trips of one origin. It returns
// nil when no destination produced a usable round trip.
func (e *Engine) scoreOrigin(
	ctx context.Context,
	origin domain.Origin,
	dests []domain.Destination,
	plan scoringPlan,
) *domain.OriginScore {
	records := make([]domain.RouteRecord, 0, len(plan.groups)+len(plan.individuals))

	for _, grp := range plan.groups {
		var best *domain.RouteRecord
		for _, idx := range grp.members {
			rec, ok := e.roundTrip(ctx, origin, dests[idx])
			if !ok {
				continue
			}
			// Strictly less: ties keep the earlier member.
			if best == nil || rec.TravelTime < best.TravelTime {
				best = &rec
			}
		}

		if best == nil {
			log.Debug().
				Str("req_id", obs.RequestID(ctx)).
				Str("origin", origin.Name).
				Str("group", grp.label).
				Msg("no reachable member in group")
			continue
		}

		// The group counts with the weight of its first member.
		applyWeight(best, dests[grp.members[0]].EffectiveWeight())
		records = append(records, *best)
	}

	for _, idx := range plan.individuals {
		rec, ok := e.roundTrip(ctx, origin, dests[idx])
		if !ok {
			continue
		}
		applyWeight(&rec, dests[idx].EffectiveWeight())
		records = append(records, rec)
	}

	if len(records) == 0 {
		log.Warn().
			Str("req_id", obs.RequestID(ctx)).
			Str("origin", origin.Name).
			Msg("origin has no valid routes, omitting from ranking")
		return nil
	}

	var total float64
	for _, r := range records {
		total += r.WeightedTime
	}

	return &domain.OriginScore{
		Name:        origin.Name,
		Coords:      *origin.Coords,
		TotalScore:  total,
		ValidRoutes: len(records),
		AvgScore:    total / float64(len(records)),
		Routes:      records,
	}
}

func applyWeight(r *domain.RouteRecord, w float64) {
	r.Weight = w
	r.WeightedTime = r.TravelTime * w
}

// roundTrip routes origin -> destination -> origin. Both legs must succeed.
func (e *Engine) roundTrip(ctx context.Context, origin domain.Origin, d domain.Destination) (domain.RouteRecord, bool) {
	profile := d.Profile
	if profile == "" {
		profile = e.profile
	}

	to, ok := e.leg(ctx, origin.Name, d.Name, domain.RouteRequest{
		From:          *origin.Coords,
		To:            *d.Coords,
		Profile:       profile,
		DepartureTime: d.DepartureTimeTo,
		DayOfWeek:     d.DayOfWeek,
	})
	if !ok {
		return domain.RouteRecord{}, false
	}

	from, ok := e.leg(ctx, d.Name, origin.Name, domain.RouteRequest{
		From:          *d.Coords,
		To:            *origin.Coords,
		Profile:       profile,
		DepartureTime: d.DepartureTimeFrom,
		DayOfWeek:     d.DayOfWeek,
	})
	if !ok {
		return domain.RouteRecord{}, false
	}

	toMin := to.EffectiveMinutes()
	fromMin := from.EffectiveMinutes()
	base := *to.TimeMinutes + *from.TimeMinutes

	rec := domain.RouteRecord{
		Origin:            origin.Name,
		Destination:       d.Name,
		Group:             d.Group,
		Profile:           profile,
		TravelTime:        toMin + fromMin,
		NormalTime:        base,
		ToTime:            toMin,
		FromTime:          fromMin,
		DepartureTimeTo:   d.DepartureTimeTo,
		DepartureTimeFrom: d.DepartureTimeFrom,
		DayOfWeek:         d.DayOfWeek,
	}

	if to.DistanceKm != nil && from.DistanceKm != nil {
		rec.DistanceKm = domain.Float(*to.DistanceKm + *from.DistanceKm)
	}

	if to.TrafficTimeMinutes != nil || from.TrafficTimeMinutes != nil {
		rec.TrafficTime = domain.Float(rec.TravelTime)
		impact := 0.0
		if base > 0 {
			impact = (rec.TravelTime - base) / base * 100
		}
		rec.TrafficImpactPercent = domain.Float(impact)
	}

	return rec, true
}

func (e *Engine) leg(ctx context.Context, from, to string, req domain.RouteRequest) (domain.RouteResult, bool) {
	e.counters.Inc(obs.RouteCalls)

	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	res, err := e.provider.Route(cctx, req)
	if err != nil {
		e.counters.Inc(obs.RouteFailures)
		log.Warn().
			Err(err).
			Str("req_id", obs.RequestID(ctx)).
			Str("from", from).
			Str("to", to).
			Str("profile", string(req.Profile)).
			Msg("route failed")
		return domain.RouteResult{}, false
	}

	if !res.Usable() {
		e.counters.Inc(obs.RouteFailures)
		log.Warn().
			Str("req_id", obs.RequestID(ctx)).
			Str("from", from).
			Str("to", to).
			Str("profile", string(req.Profile)).
			Msg("no route found")
		return domain.RouteResult{}, false
	}

	return res, true
}
