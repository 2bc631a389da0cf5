package routing

import (
	"time"

	"homerank/internal/platform/obs"
)

func newTestClient(counters *obs.Counters, headers map[string]string) *httpClient {
	c := newHTTPClient(2*time.Second, counters, headers)
	c.backoff = time.Millisecond
	return c
}
