package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"homerank/internal/domain"
)

// Fingerprint hashes a provider call into a stable cache key. The call is
// serialized as JSON with every object's keys sorted, so argument maps
// built in any order produce the same fingerprint.
func Fingerprint(provider, method string, args map[string]any) (string, error) {
	canonical, err := json.Marshal(map[string]any{
		"provider": provider,
		"method":   method,
		"args":     args,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint %s.%s: %w", provider, method, err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// geocodeArgs keeps the name as given; providers normalize names
// differently, so two spellings may not resolve to the same place.
func geocodeArgs(name string) map[string]any {
	return map[string]any{"name": name}
}

// routeArgs omits empty hints so a call without hints and a call with
// empty hints share one entry.
func routeArgs(req domain.RouteRequest) map[string]any {
	args := map[string]any{
		"from":    req.From.Key(),
		"to":      req.To.Key(),
		"profile": string(req.Profile),
	}
	if req.DepartureTime != "" {
		args["departure_time"] = req.DepartureTime
	}
	if req.DayOfWeek != "" {
		args["day_of_week"] = req.DayOfWeek
	}
	return args
}
