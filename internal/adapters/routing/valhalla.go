package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"
)

// Valhalla error codes meaning the request was understood but no route
// exists between the locations.
var valhallaNoRouteCodes = map[int]struct{}{
	170: {},
	171: {},
	442: {},
	443: {},
}

type valhallaLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type valhallaRouteRequest struct {
	Locations         []valhallaLocation `json:"locations"`
	Costing           string             `json:"costing"`
	DirectionsOptions struct {
		Units string `json:"units"`
	} `json:"directions_options"`
}

type valhallaRouteResponse struct {
	Trip struct {
		Status  int `json:"status"`
		Summary struct {
			Time   float64 `json:"time"`
			Length float64 `json:"length"`
		} `json:"summary"`
	} `json:"trip"`
}

type valhallaError struct {
	ErrorCode int    `json:"error_code"`
	Error     string `json:"error"`
}

// ValhallaProvider routes through a Valhalla server and geocodes through
// Nominatim. All transport profiles map to native Valhalla costings.
//
// Departure time and day-of-week hints are ignored: results never carry
// traffic-adjusted times.
type ValhallaProvider struct {
	http     *httpClient
	name     string
	baseURL  string
	geocoder *NominatimGeocoder
}

func NewValhallaProvider(baseURL string, geocoder *NominatimGeocoder, client *httpClient) (*ValhallaProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("valhalla base url is empty")
	}
	if geocoder == nil {
		return nil, errors.New("valhalla provider requires a geocoder")
	}

	return &ValhallaProvider{
		http:     client,
		name:     qualifiedName(KindValhalla, baseURL, geocoder.baseURL),
		baseURL:  strings.TrimRight(baseURL, "/"),
		geocoder: geocoder,
	}, nil
}

func (v *ValhallaProvider) Name() string { return v.name }

func (v *ValhallaProvider) Geocode(ctx context.Context, name string) (domain.Coordinates, error) {
	return v.geocoder.Geocode(ctx, name)
}

func (v *ValhallaProvider) Route(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "valhalla.Route")(&err)

	if !req.Profile.Valid() {
		return domain.RouteResult{}, &domain.InvalidProfileError{Profile: string(req.Profile)}
	}

	body := valhallaRouteRequest{
		Locations: []valhallaLocation{
			{Lat: req.From.Lat, Lon: req.From.Lon},
			{Lat: req.To.Lat, Lon: req.To.Lon},
		},
		Costing: string(req.Profile),
	}
	body.DirectionsOptions.Units = "kilometers"

	var decoded valhallaRouteResponse
	if err := v.http.postJSON(ctx, v.baseURL+"/route", body, &decoded); err != nil {
		if valhallaNoRoute(err) {
			return domain.RouteResult{}, nil
		}
		return domain.RouteResult{}, &domain.RouteError{From: req.From, To: req.To, Profile: req.Profile, Err: err}
	}

	if decoded.Trip.Status != 0 {
		return domain.RouteResult{}, nil
	}

	return domain.RouteResult{
		TimeMinutes: domain.Float(decoded.Trip.Summary.Time / 60),
		DistanceKm:  domain.Float(decoded.Trip.Summary.Length),
	}, nil
}

func valhallaNoRoute(err error) bool {
	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		return false
	}

	var ve valhallaError
	if jsonErr := json.Unmarshal([]byte(he.Body), &ve); jsonErr != nil {
		return false
	}
	_, ok := valhallaNoRouteCodes[ve.ErrorCode]
	return ok
}
