package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"homerank/internal/domain"
)

const (
	earthRadiusKm  = 6371.0
	rushHourFactor = 1.3
)

// Average speeds in km/h.
var offlineSpeeds = map[domain.Profile]float64{
	domain.ProfileAuto:         40,
	domain.ProfileBicycle:      15,
	domain.ProfilePedestrian:   5,
	domain.ProfileBus:          25,
	domain.ProfileMotorScooter: 35,
	domain.ProfileTruck:        30,
}

// OfflineEstimator estimates travel from great-circle distance and a fixed
// speed per profile. It makes no network calls and always returns the same
// result for the same inputs. Unknown profiles use the auto speed.
//
// When both a departure time and a day of week are given, the result
// carries a traffic time: 1.3x the base time during weekday rush hours,
// the base time otherwise.
type OfflineEstimator struct {
	places   map[string]domain.Coordinates
	keys     []string
	fallback *domain.Coordinates
}

type OfflineOption func(*OfflineEstimator)

// WithFallback makes Geocode return c for names not in the gazetteer.
func WithFallback(c domain.Coordinates) OfflineOption {
	return func(o *OfflineEstimator) { o.fallback = &c }
}

func NewOfflineEstimator(gazetteer map[string]domain.Coordinates, opts ...OfflineOption) *OfflineEstimator {
	o := &OfflineEstimator{places: make(map[string]domain.Coordinates, len(gazetteer))}
	for name, c := range gazetteer {
		key := strings.ToLower(strings.TrimSpace(name))
		o.places[key] = c
		o.keys = append(o.keys, key)
	}
	sort.Strings(o.keys)

	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadGazetteer reads a JSON object mapping place names to {"lat","lon"}.
func LoadGazetteer(path string) (map[string]domain.Coordinates, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: read %q: %w", path, err)
	}

	var out map[string]domain.Coordinates
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("load gazetteer: parse json: %w", err)
	}
	return out, nil
}

func (o *OfflineEstimator) Name() string { return string(KindOffline) }

func (o *OfflineEstimator) Geocode(_ context.Context, name string) (domain.Coordinates, error) {
	norm := strings.ToLower(strings.TrimSpace(name))

	if c, ok := o.places[norm]; ok && norm != "" {
		return c, nil
	}

	for _, key := range o.keys {
		if key != "" && strings.Contains(norm, key) {
			return o.places[key], nil
		}
	}

	if o.fallback != nil {
		return *o.fallback, nil
	}
	return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: domain.ErrNoMatch}
}

func (o *OfflineEstimator) Route(_ context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	speed, ok := offlineSpeeds[req.Profile]
	if !ok {
		speed = offlineSpeeds[domain.ProfileAuto]
	}

	km := haversineKm(req.From, req.To)
	minutes := km / speed * 60

	out := domain.RouteResult{
		TimeMinutes: domain.Float(minutes),
		DistanceKm:  domain.Float(km),
	}

	if req.DepartureTime == "" || req.DayOfWeek == "" {
		return out, nil
	}

	rush, err := isRushHour(req.DayOfWeek, req.DepartureTime)
	if err != nil {
		return out, nil
	}

	factor := 1.0
	if rush {
		factor = rushHourFactor
	}
	out.TrafficTimeMinutes = domain.Float(minutes * factor)
	out.TrafficImpactPercent = domain.Float((factor - 1) * 100)

	return out, nil
}

// haversineKm returns the great-circle distance between a and b.
func haversineKm(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
