package routing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
)

var googleModes = map[domain.Profile]string{
	domain.ProfileAuto:         "driving",
	domain.ProfileTruck:        "driving",
	domain.ProfileMotorScooter: "driving",
	domain.ProfileBicycle:      "bicycling",
	domain.ProfilePedestrian:   "walking",
	domain.ProfileBus:          "transit",
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type googleValue struct {
	Value float64 `json:"value"`
}

type googleMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status            string       `json:"status"`
			Duration          *googleValue `json:"duration"`
			DurationInTraffic *googleValue `json:"duration_in_traffic"`
			Distance          *googleValue `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// GoogleProvider uses the Google Maps Geocoding and Distance Matrix APIs.
//
// It is time-of-day aware: a departure time hint is sent as the next
// matching instant, and driving requests then report traffic-adjusted
// durations. Truck and motor scooter profiles are routed as driving.
type GoogleProvider struct {
	http    *httpClient
	name    string
	baseURL string
	apiKey  string
	loc     *time.Location
	now     func() time.Time
}

func NewGoogleProvider(apiKey, baseURL string, loc *time.Location, client *httpClient) (*GoogleProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google api key is empty")
	}
	if loc == nil {
		loc = time.Local
	}

	return &GoogleProvider{
		http:    client,
		name:    qualifiedName(KindGoogle, baseURL),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		loc:     loc,
		now:     time.Now,
	}, nil
}

func (g *GoogleProvider) Name() string { return g.name }

func (g *GoogleProvider) Geocode(ctx context.Context, name string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	q := url.Values{}
	q.Set("address", strings.Join(strings.Fields(name), " "))
	q.Set("key", g.apiKey)

	var decoded googleGeocodeResponse
	if err := g.http.getJSON(ctx, g.baseURL+"/maps/api/geocode/json", q, &decoded); err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: err}
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: domain.ErrNoMatch}
	default:
		return domain.Coordinates{}, &domain.GeocodeError{
			Name: name,
			Err:  fmt.Errorf("status %s: %s", decoded.Status, decoded.ErrorMessage),
		}
	}

	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: domain.ErrNoMatch}
	}

	loc := decoded.Results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}, nil
}

func (g *GoogleProvider) Route(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "google.Route")(&err)

	mode, ok := googleModes[req.Profile]
	if !ok {
		return domain.RouteResult{}, &domain.InvalidProfileError{Profile: string(req.Profile)}
	}

	routeErr := func(err error) error {
		return &domain.RouteError{From: req.From, To: req.To, Profile: req.Profile, Err: err}
	}

	q := url.Values{}
	q.Set("origins", req.From.Key())
	q.Set("destinations", req.To.Key())
	q.Set("mode", mode)
	q.Set("units", "metric")
	q.Set("key", g.apiKey)

	if req.DepartureTime != "" {
		depart, err := nextDeparture(g.now().In(g.loc), req.DayOfWeek, req.DepartureTime)
		if err != nil {
			return domain.RouteResult{}, routeErr(fmt.Errorf("departure hint: %w", err))
		}
		q.Set("departure_time", strconv.FormatInt(depart.Unix(), 10))
		if mode == "driving" {
			q.Set("traffic_model", "best_guess")
		}
	}

	var decoded googleMatrixResponse
	if err := g.http.getJSON(ctx, g.baseURL+"/maps/api/distancematrix/json", q, &decoded); err != nil {
		return domain.RouteResult{}, routeErr(err)
	}

	if decoded.Status != "OK" {
		return domain.RouteResult{}, routeErr(fmt.Errorf("status %s: %s", decoded.Status, decoded.ErrorMessage))
	}
	if len(decoded.Rows) == 0 || len(decoded.Rows[0].Elements) == 0 {
		return domain.RouteResult{}, routeErr(errors.New("empty distance matrix"))
	}

	el := decoded.Rows[0].Elements[0]
	switch el.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.RouteResult{}, nil
	default:
		return domain.RouteResult{}, routeErr(fmt.Errorf("element status %s", el.Status))
	}

	if el.Duration == nil {
		return domain.RouteResult{}, nil
	}

	base := el.Duration.Value / 60
	out := domain.RouteResult{TimeMinutes: domain.Float(base)}
	if el.Distance != nil {
		out.DistanceKm = domain.Float(el.Distance.Value / 1000)
	}
	if el.DurationInTraffic != nil {
		traffic := el.DurationInTraffic.Value / 60
		out.TrafficTimeMinutes = domain.Float(traffic)
		if base > 0 {
			out.TrafficImpactPercent = domain.Float((traffic - base) / base * 100)
		}
	}

	return out, nil
}
