package obs

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter identifies one of the run counters.
type Counter int

const (
	GeocodeCalls Counter = iota
	GeocodeFailures
	RouteCalls
	RouteFailures
	CacheHits
	CacheMisses
	CacheErrors
	UpstreamRequests
	numCounters
)

var counterNames = [numCounters]string{
	GeocodeCalls:     "geocode_calls",
	GeocodeFailures:  "geocode_failures",
	RouteCalls:       "route_calls",
	RouteFailures:    "route_failures",
	CacheHits:        "cache_hits",
	CacheMisses:      "cache_misses",
	CacheErrors:      "cache_errors",
	UpstreamRequests: "upstream_requests",
}

var counterHelp = [numCounters]string{
	GeocodeCalls:     "Geocode calls issued by the scoring engine.",
	GeocodeFailures:  "Geocode calls that failed and fell back to the sentinel coordinate.",
	RouteCalls:       "Route calls issued by the scoring engine.",
	RouteFailures:    "Route calls that failed or returned no travel time.",
	CacheHits:        "Provider calls answered from the result cache.",
	CacheMisses:      "Provider calls not found in the result cache.",
	CacheErrors:      "Cache store operations that failed and were bypassed.",
	UpstreamRequests: "HTTP requests sent to remote routing and geocoding services.",
}

func (c Counter) String() string {
	if c < 0 || c >= numCounters {
		return "unknown"
	}
	return counterNames[c]
}

// Counters is owned by the caller of a scoring run and passed to the
// components that update it. A nil *Counters discards updates.
//
// It implements prometheus.Collector so a server can expose it on its own
// registry.
type Counters struct {
	values [numCounters]atomic.Int64
	descs  [numCounters]*prometheus.Desc
}

func NewCounters() *Counters {
	c := &Counters{}
	for i := Counter(0); i < numCounters; i++ {
		c.descs[i] = prometheus.NewDesc(
			"homerank_"+counterNames[i]+"_total",
			counterHelp[i],
			nil, nil,
		)
	}
	return c
}

func (c *Counters) Inc(k Counter) {
	if c == nil {
		return
	}
	c.values[k].Add(1)
}

func (c *Counters) Get(k Counter) int64 {
	if c == nil {
		return 0
	}
	return c.values[k].Load()
}

// Snapshot returns the current values keyed by counter name.
func (c *Counters) Snapshot() map[string]int64 {
	out := make(map[string]int64, numCounters)
	for i := Counter(0); i < numCounters; i++ {
		out[counterNames[i]] = c.Get(i)
	}
	return out
}

func (c *Counters) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *Counters) Collect(ch chan<- prometheus.Metric) {
	for i := Counter(0); i < numCounters; i++ {
		ch <- prometheus.MustNewConstMetric(c.descs[i], prometheus.CounterValue, float64(c.values[i].Load()))
	}
}
