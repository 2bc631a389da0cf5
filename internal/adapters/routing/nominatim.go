package routing

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"homerank/internal/domain"
	"homerank/internal/platform/obs"

	"golang.org/x/time/rate"
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder resolves place names through a Nominatim /search
// endpoint. Requests are rate limited; the public instance allows one per
// second.
type NominatimGeocoder struct {
	http    *httpClient
	baseURL string
	limiter *rate.Limiter
}

func NewNominatimGeocoder(baseURL string, ratePerSec float64, client *httpClient) *NominatimGeocoder {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &NominatimGeocoder{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, name string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	query := strings.Join(strings.Fields(name), " ")
	if query == "" {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: fmt.Errorf("empty name")}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []nominatimPlace
	if err := g.http.getJSON(ctx, g.baseURL+"/search", q, &places); err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: err}
	}

	if len(places) == 0 {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: domain.ErrNoMatch}
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: fmt.Errorf("parse lat %q: %w", places[0].Lat, err)}
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Name: name, Err: fmt.Errorf("parse lon %q: %w", places[0].Lon, err)}
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
