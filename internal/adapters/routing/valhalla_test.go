package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homerank/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValhallaTestProvider(t *testing.T, handler http.HandlerFunc) *ValhallaProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := newTestClient(nil, nil)
	p, err := NewValhallaProvider(srv.URL, NewNominatimGeocoder(srv.URL, 0, client), client)
	require.NoError(t, err)
	return p
}

func TestValhallaRoute(t *testing.T) {
	p := newValhallaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/route", r.URL.Path)

		var body valhallaRouteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bicycle", body.Costing)
		assert.Equal(t, "kilometers", body.DirectionsOptions.Units)
		require.Len(t, body.Locations, 2)
		assert.Equal(t, 37.7749, body.Locations[0].Lat)
		assert.Equal(t, -118.2437, body.Locations[1].Lon)

		w.Write([]byte(`{"trip":{"status":0,"summary":{"time":1800,"length":7.5}}}`))
	})

	res, err := p.Route(context.Background(), domain.RouteRequest{
		From:          sanFrancisco,
		To:            losAngeles,
		Profile:       domain.ProfileBicycle,
		DepartureTime: "08:00",
		DayOfWeek:     "Monday",
	})
	require.NoError(t, err)
	require.NotNil(t, res.TimeMinutes)
	assert.Equal(t, 30.0, *res.TimeMinutes)
	assert.Equal(t, 7.5, *res.DistanceKm)
	assert.Nil(t, res.TrafficTimeMinutes)
	assert.True(t, strings.HasPrefix(p.Name(), "valhalla@127.0.0.1:"), p.Name())
}

func TestValhallaNoRoute(t *testing.T) {
	p := newValhallaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_code":442,"error":"No path could be found for input","status_code":400}`))
	})

	res, err := p.Route(context.Background(), domain.RouteRequest{From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto})
	require.NoError(t, err)
	assert.False(t, res.Usable())
}

func TestValhallaRouteErrors(t *testing.T) {
	t.Run("bad request is a route error", func(t *testing.T) {
		p := newValhallaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_code":154,"error":"Path distance exceeds the max distance limit"}`))
		})

		_, err := p.Route(context.Background(), domain.RouteRequest{From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto})
		var re *domain.RouteError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, domain.ProfileAuto, re.Profile)
	})

	t.Run("server failure is a route error", func(t *testing.T) {
		p := newValhallaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := p.Route(context.Background(), domain.RouteRequest{From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto})
		var re *domain.RouteError
		assert.True(t, errors.As(err, &re))
	})

	t.Run("unknown profile", func(t *testing.T) {
		p := newValhallaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := p.Route(context.Background(), domain.RouteRequest{Profile: "hovercraft"})
		var ipe *domain.InvalidProfileError
		assert.True(t, errors.As(err, &ipe))
	})
}

func TestValhallaGeocodeUsesNominatim(t *testing.T) {
	p := newValhallaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Write([]byte(`[{"lat":"34.0522","lon":"-118.2437"}]`))
	})

	c, err := p.Geocode(context.Background(), "Los Angeles")
	require.NoError(t, err)
	assert.Equal(t, losAngeles, c)
}
