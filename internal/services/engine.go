package services

import (
	"context"
	"sync/atomic"
	"time"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
	"homerank/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultCallTimeout = 30 * time.Second

// Engine ranks origins by the weighted round-trip travel time to a set of
// destinations. An Engine holds no state between runs and may be reused.
type Engine struct {
	provider    ports.RoutingProvider
	profile     domain.Profile
	callTimeout time.Duration
	concurrency int
	counters    *obs.Counters
	progress    func(done, total int)
}

type EngineOption func(*Engine)

// WithProfile sets the transport profile for destinations without an
// override.
func WithProfile(p domain.Profile) EngineOption {
	return func(e *Engine) {
		if p != "" {
			e.profile = p
		}
	}
}

// WithCallTimeout bounds every geocode and route call.
func WithCallTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithConcurrency sets how many origins are scored at once.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithCounters(c *obs.Counters) EngineOption {
	return func(e *Engine) { e.counters = c }
}

// WithProgress registers fn to be called after each origin is scored.
// fn may be called from several goroutines at once.
func WithProgress(fn func(done, total int)) EngineOption {
	return func(e *Engine) { e.progress = fn }
}

func NewEngine(provider ports.RoutingProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		provider:    provider,
		profile:     domain.DefaultProfile,
		callTimeout: defaultCallTimeout,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score geocodes the inputs, scores every origin and ranks them ascending
// by average score. The inputs are not modified; the report carries copies
// with resolved coordinates.
//
// Cancelling ctx stops the run between origins. The report then holds the
// origins scored so far and the context error is returned with it.
func (e *Engine) Score(
	ctx context.Context,
	destinations []domain.Destination,
	origins []domain.Origin,
) (_ *domain.Report, err error) {
	if obs.RequestID(ctx) == "" {
		ctx = obs.WithRequestID(ctx, uuid.NewString())
	}
	defer obs.Time(ctx, "engine.Score")(&err)

	dests := cloneDestinations(destinations)
	origs := cloneOrigins(origins)

	e.geocodeAll(ctx, dests, origs)

	plan := buildPlan(dests)
	scores := make([]*domain.OriginScore, len(origs))

	// Work already started for an origin finishes even after cancellation;
	// each call is still bounded by the call timeout.
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	var done, skipped atomic.Int64
	for i := range origs {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				skipped.Add(1)
				return nil
			}

			scores[i] = e.scoreOrigin(workCtx, origs[i], dests, plan)

			n := done.Add(1)
			if e.progress != nil {
				e.progress(int(n), len(origs))
			}
			return nil
		})
	}
	_ = g.Wait()

	report := assembleReport(scores, dests, origs)

	log.Info().
		Str("req_id", obs.RequestID(ctx)).
		Str("provider", e.provider.Name()).
		Int("origins", len(origs)).
		Int("destinations", len(dests)).
		Int("scored", len(report.Scores)).
		Int("routes", len(report.Routes)).
		Int64("skipped", skipped.Load()).
		Msg("scoring run finished")

	if skipped.Load() > 0 {
		return report, ctx.Err()
	}
	return report, nil
}

func assembleReport(scores []*domain.OriginScore, dests []domain.Destination, origs []domain.Origin) *domain.Report {
	report := &domain.Report{
		Scores:       make([]domain.OriginScore, 0, len(scores)),
		Routes:       []domain.RouteRecord{},
		Destinations: dests,
		Origins:      origs,
	}

	for _, s := range scores {
		if s == nil {
			continue
		}
		report.Scores = append(report.Scores, *s)
		report.Routes = append(report.Routes, s.Routes...)
	}

	rankScores(report.Scores)
	return report
}

func cloneDestinations(in []domain.Destination) []domain.Destination {
	out := make([]domain.Destination, len(in))
	copy(out, in)
	return out
}

func cloneOrigins(in []domain.Origin) []domain.Origin {
	out := make([]domain.Origin, len(in))
	copy(out, in)
	return out
}
