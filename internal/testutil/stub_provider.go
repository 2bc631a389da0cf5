// Package testutil holds deterministic test doubles shared across packages.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"homerank/internal/domain"
)

// StubProvider is a RoutingProvider answering from fixed tables. Every call
// is counted so tests can assert how often the provider was reached.
type StubProvider struct {
	name string

	mu       sync.Mutex
	places   map[string]domain.Coordinates
	legs     map[string]domain.RouteResult
	failures map[string]error

	geocodeCalls int
	routeCalls   int
	requests     []domain.RouteRequest

	// OnRoute, when set, runs before every Route answer.
	OnRoute func(ctx context.Context, req domain.RouteRequest)
}

func NewStubProvider(name string) *StubProvider {
	return &StubProvider{
		name:     name,
		places:   make(map[string]domain.Coordinates),
		legs:     make(map[string]domain.RouteResult),
		failures: make(map[string]error),
	}
}

func legKey(from, to domain.Coordinates) string { return from.Key() + "|" + to.Key() }

func (p *StubProvider) WithPlace(name string, c domain.Coordinates) *StubProvider {
	p.places[name] = c
	return p
}

// WithLeg answers from -> to with a plain travel time.
func (p *StubProvider) WithLeg(from, to domain.Coordinates, minutes float64) *StubProvider {
	return p.WithResult(from, to, domain.RouteResult{TimeMinutes: domain.Float(minutes)})
}

// WithRoundTrip sets both directions to the same travel time.
func (p *StubProvider) WithRoundTrip(a, b domain.Coordinates, minutes float64) *StubProvider {
	return p.WithLeg(a, b, minutes).WithLeg(b, a, minutes)
}

func (p *StubProvider) WithResult(from, to domain.Coordinates, r domain.RouteResult) *StubProvider {
	p.legs[legKey(from, to)] = r
	return p
}

func (p *StubProvider) WithRouteError(from, to domain.Coordinates, err error) *StubProvider {
	p.failures[legKey(from, to)] = err
	return p
}

func (p *StubProvider) Name() string { return p.name }

func (p *StubProvider) Geocode(_ context.Context, name string) (domain.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.geocodeCalls++
	c, ok := p.places[name]
	if !ok {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: domain.ErrNoMatch}
	}
	return c, nil
}

func (p *StubProvider) Route(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	if p.OnRoute != nil {
		p.OnRoute(ctx, req)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.routeCalls++
	p.requests = append(p.requests, req)

	if err := ctx.Err(); err != nil {
		return domain.RouteResult{}, &domain.RouteError{From: req.From, To: req.To, Profile: req.Profile, Err: err}
	}

	key := legKey(req.From, req.To)
	if err, ok := p.failures[key]; ok {
		return domain.RouteResult{}, &domain.RouteError{From: req.From, To: req.To, Profile: req.Profile, Err: err}
	}

	r, ok := p.legs[key]
	if !ok {
		return domain.RouteResult{}, &domain.RouteError{
			From:    req.From,
			To:      req.To,
			Profile: req.Profile,
			Err:     fmt.Errorf("missing pair %q -> %q", req.From.Key(), req.To.Key()),
		}
	}
	return r, nil
}

func (p *StubProvider) GeocodeCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.geocodeCalls
}

func (p *StubProvider) RouteCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routeCalls
}

// Requests returns a copy of every route request received.
func (p *StubProvider) Requests() []domain.RouteRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.RouteRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
