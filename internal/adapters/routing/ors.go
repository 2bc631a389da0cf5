package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
)

var orsProfiles = map[domain.Profile]string{
	domain.ProfileAuto:       "driving-car",
	domain.ProfileTruck:      "driving-hgv",
	domain.ProfileBicycle:    "cycling-regular",
	domain.ProfilePedestrian: "foot-walking",
}

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

type orsDirectionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
}

type orsDirectionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// ORSProvider implements RoutingProvider using OpenRouteService.
//
// Bus and motor scooter have no ORS equivalent and fail with
// InvalidProfileError. Departure hints are ignored.
type ORSProvider struct {
	http    *httpClient
	name    string
	apiKey  string
	baseURL string
	country string
}

// NewORSProvider builds the provider. country, when set, restricts geocoding
// to an ISO 3166 country code.
func NewORSProvider(apiKey, baseURL, country string, client *httpClient) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		http:    client,
		name:    qualifiedName(KindORS, baseURL),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
	}, nil
}

func (o *ORSProvider) Name() string { return o.name }

// normalize collapses whitespace so equal names produce equal queries.
func (o *ORSProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSProvider) Geocode(ctx context.Context, name string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(name)
	if norm == "" {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: errors.New("empty name")}
	}

	q := url.Values{}
	q.Set("text", norm)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}

	var decoded orsGeocodeResponse
	if err := o.http.getJSON(ctx, o.baseURL+"/geocode/search", q, &decoded); err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: err}
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: domain.ErrNoMatch}
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: fmt.Errorf("invalid coordinate format %v", coords)}
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}

func (o *ORSProvider) Route(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	profile, ok := orsProfiles[req.Profile]
	if !ok {
		return domain.RouteResult{}, &domain.InvalidProfileError{Profile: string(req.Profile)}
	}

	body := orsDirectionsRequest{
		Coordinates: [][]float64{req.From.CoordsToList(), req.To.CoordsToList()},
		Units:       "km",
	}

	var decoded orsDirectionsResponse
	if err := o.http.postJSON(ctx, o.baseURL+"/v2/directions/"+profile, body, &decoded); err != nil {
		if statusCode(err) == http.StatusNotFound {
			return domain.RouteResult{}, nil
		}
		return domain.RouteResult{}, &domain.RouteError{From: req.From, To: req.To, Profile: req.Profile, Err: err}
	}

	if len(decoded.Routes) == 0 {
		return domain.RouteResult{}, nil
	}

	summary := decoded.Routes[0].Summary
	return domain.RouteResult{
		TimeMinutes: domain.Float(summary.Duration / 60),
		DistanceKm:  domain.Float(summary.Distance),
	}, nil
}
