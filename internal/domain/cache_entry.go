package domain

import (
	"encoding/json"
	"time"
)

// A memoized provider result addressed by its request fingerprint.
type CacheEntry struct {
	Fingerprint string          `json:"fingerprint"`
	Payload     json.RawMessage `json:"payload"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
