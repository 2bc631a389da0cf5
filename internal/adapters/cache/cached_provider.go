package cache

import (
	"context"
	"encoding/json"
	"time"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
	"homerank/internal/ports"

	"github.com/rs/zerolog/log"
)

const defaultStoreTimeout = 2 * time.Second

// CachedProvider memoizes another RoutingProvider in a CacheStore.
//
// Concurrent identical calls may both miss and both reach the inner
// provider; the store keeps the last write. When the store fails, calls go
// straight to the inner provider and a warning is logged.
type CachedProvider struct {
	inner    ports.RoutingProvider
	store    ports.CacheStore
	timeout  time.Duration
	counters *obs.Counters
	now      func() time.Time
}

type Option func(*CachedProvider)

// WithStoreTimeout bounds every store Get and Put.
func WithStoreTimeout(d time.Duration) Option {
	return func(c *CachedProvider) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithCounters(counters *obs.Counters) Option {
	return func(c *CachedProvider) { c.counters = counters }
}

// NewCachedProvider wraps inner. A nil store disables caching.
func NewCachedProvider(inner ports.RoutingProvider, store ports.CacheStore, opts ...Option) *CachedProvider {
	c := &CachedProvider{
		inner:   inner,
		store:   store,
		timeout: defaultStoreTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

func (c *CachedProvider) Geocode(ctx context.Context, name string) (domain.Coordinates, error) {
	return cached(ctx, c, "geocode", geocodeArgs(name), func(ctx context.Context) (domain.Coordinates, error) {
		return c.inner.Geocode(ctx, name)
	})
}

func (c *CachedProvider) Route(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	return cached(ctx, c, "route", routeArgs(req), func(ctx context.Context) (domain.RouteResult, error) {
		return c.inner.Route(ctx, req)
	})
}

func cached[T any](
	ctx context.Context,
	c *CachedProvider,
	method string,
	args map[string]any,
	call func(context.Context) (T, error),
) (T, error) {
	if c.store == nil {
		return call(ctx)
	}

	fp, err := Fingerprint(c.inner.Name(), method, args)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Msg("cannot fingerprint call, bypassing cache")
		return call(ctx)
	}

	if v, ok := lookup[T](ctx, c, fp); ok {
		c.counters.Inc(obs.CacheHits)
		return v, nil
	}
	c.counters.Inc(obs.CacheMisses)

	v, err := call(ctx)
	if err != nil {
		return v, err
	}

	c.put(ctx, fp, method, args, v)
	return v, nil
}

func lookup[T any](ctx context.Context, c *CachedProvider, fp string) (T, bool) {
	var v T

	sctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	entry, err := c.store.Get(sctx, fp)
	if err != nil {
		c.degrade(ctx, "get", fp, err)
		return v, false
	}
	if entry == nil {
		return v, false
	}

	if err := json.Unmarshal(entry.Payload, &v); err != nil {
		log.Warn().Err(err).Str("fingerprint", fp).Msg("ignoring undecodable cache entry")
		return v, false
	}
	return v, true
}

func (c *CachedProvider) put(ctx context.Context, fp, method string, args map[string]any, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("fingerprint", fp).Msg("cannot encode result for cache")
		return
	}

	sctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = c.store.Put(sctx, domain.CacheEntry{
		Fingerprint: fp,
		Payload:     payload,
		Metadata: map[string]any{
			"provider": c.inner.Name(),
			"method":   method,
			"args":     args,
		},
		CreatedAt: c.now().UTC(),
	})
	if err != nil {
		c.degrade(ctx, "put", fp, err)
	}
}

func (c *CachedProvider) degrade(ctx context.Context, op, fp string, err error) {
	c.counters.Inc(obs.CacheErrors)

	log.Warn().
		Err(&domain.CacheUnavailableError{Op: op, Err: err}).
		Str("req_id", obs.RequestID(ctx)).
		Str("fingerprint", fp).
		Msg("cache store unavailable, calling provider directly")
}
