package domain

// RouteRequest describes one point-to-point routing query. DepartureTime
// ("HH:MM") and DayOfWeek are optional hints.
type RouteRequest struct {
	From          Coordinates
	To            Coordinates
	Profile       Profile
	DepartureTime string
	DayOfWeek     string
}

// RouteResult summarises a single leg. A nil TimeMinutes means the
// service answered but could not compute a route.
type RouteResult struct {
	TimeMinutes          *float64 `json:"time_minutes,omitempty"`
	DistanceKm           *float64 `json:"distance_km,omitempty"`
	TrafficTimeMinutes   *float64 `json:"traffic_time_minutes,omitempty"`
	TrafficImpactPercent *float64 `json:"traffic_impact_percent,omitempty"`
}

// Usable reports whether the result carries a travel time.
func (r RouteResult) Usable() bool {
	return r.TimeMinutes != nil && *r.TimeMinutes >= 0
}

// EffectiveMinutes prefers the traffic-adjusted time over the base time.
func (r RouteResult) EffectiveMinutes() float64 {
	if r.TrafficTimeMinutes != nil {
		return *r.TrafficTimeMinutes
	}
	if r.TimeMinutes != nil {
		return *r.TimeMinutes
	}
	return 0
}

// RouteRecord is one scored round trip between an origin and a destination.
type RouteRecord struct {
	Origin               string   `json:"origin"`
	Destination          string   `json:"destination"`
	Group                string   `json:"group,omitempty"`
	Profile              Profile  `json:"transport_mode"`
	TravelTime           float64  `json:"travel_time"`
	NormalTime           float64  `json:"normal_time"`
	TrafficTime          *float64 `json:"traffic_time,omitempty"`
	TrafficImpactPercent *float64 `json:"traffic_impact_percent,omitempty"`
	ToTime               float64  `json:"to_time"`
	FromTime             float64  `json:"from_time"`
	DistanceKm           *float64 `json:"distance_km,omitempty"`
	Weight               float64  `json:"weight"`
	WeightedTime         float64  `json:"weighted_time"`
	DepartureTimeTo      string   `json:"departure_time_to,omitempty"`
	DepartureTimeFrom    string   `json:"departure_time_from,omitempty"`
	DayOfWeek            string   `json:"day_of_week,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
