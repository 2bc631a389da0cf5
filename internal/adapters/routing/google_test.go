package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"homerank/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleTestProvider(t *testing.T, handler http.HandlerFunc) *GoogleProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewGoogleProvider("test-key", srv.URL, time.UTC, newTestClient(nil, nil))
	require.NoError(t, err)
	// Wednesday 2026-01-07 06:00 UTC
	p.now = func() time.Time { return time.Date(2026, 1, 7, 6, 0, 0, 0, time.UTC) }
	return p
}

func TestGoogleGeocode(t *testing.T) {
	p := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		switch r.URL.Query().Get("address") {
		case "Los Angeles":
			w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":34.0522,"lng":-118.2437}}}]}`))
		case "Atlantis":
			w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		default:
			w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
		}
	})

	c, err := p.Geocode(context.Background(), "Los Angeles")
	require.NoError(t, err)
	assert.Equal(t, losAngeles, c)

	_, err = p.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, domain.ErrNoMatch)

	_, err = p.Geocode(context.Background(), "Anywhere")
	var ge *domain.GeocodeError
	require.True(t, errors.As(err, &ge))
	assert.Contains(t, ge.Error(), "REQUEST_DENIED")
}

func TestGoogleRouteWithTraffic(t *testing.T) {
	wantDepart := time.Date(2026, 1, 7, 8, 30, 0, 0, time.UTC).Unix()

	p := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		assert.Equal(t, "37.774900,-122.419400", q.Get("origins"))
		assert.Equal(t, "34.052200,-118.243700", q.Get("destinations"))
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, strconv.FormatInt(wantDepart, 10), q.Get("departure_time"))
		assert.Equal(t, "best_guess", q.Get("traffic_model"))

		w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK",
			"duration":{"value":1200},"duration_in_traffic":{"value":1500},"distance":{"value":15000}}]}]}`))
	})

	res, err := p.Route(context.Background(), domain.RouteRequest{
		From:          sanFrancisco,
		To:            losAngeles,
		Profile:       domain.ProfileTruck,
		DepartureTime: "08:30",
		DayOfWeek:     "Wednesday",
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, *res.TimeMinutes)
	assert.Equal(t, 15.0, *res.DistanceKm)
	assert.Equal(t, 25.0, *res.TrafficTimeMinutes)
	assert.InDelta(t, 25.0, *res.TrafficImpactPercent, 1e-9)
}

func TestGoogleRouteModes(t *testing.T) {
	var gotMode, gotTraffic string
	p := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotMode = r.URL.Query().Get("mode")
		gotTraffic = r.URL.Query().Get("traffic_model")
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK","duration":{"value":600}}]}]}`))
	})

	tests := map[domain.Profile]string{
		domain.ProfileBus:          "transit",
		domain.ProfilePedestrian:   "walking",
		domain.ProfileBicycle:      "bicycling",
		domain.ProfileMotorScooter: "driving",
	}
	for profile, mode := range tests {
		res, err := p.Route(context.Background(), domain.RouteRequest{
			From: sanFrancisco, To: losAngeles, Profile: profile, DepartureTime: "09:00",
		})
		require.NoError(t, err)
		assert.Equal(t, mode, gotMode)
		assert.Equal(t, mode == "driving", gotTraffic == "best_guess")
		assert.Equal(t, 10.0, *res.TimeMinutes)
		assert.Nil(t, res.TrafficTimeMinutes)
	}
}

func TestGoogleRouteNoResults(t *testing.T) {
	p := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`))
	})

	res, err := p.Route(context.Background(), domain.RouteRequest{From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto})
	require.NoError(t, err)
	assert.False(t, res.Usable())
}

func TestGoogleRouteErrors(t *testing.T) {
	p := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OVER_QUERY_LIMIT","error_message":"quota"}`))
	})

	_, err := p.Route(context.Background(), domain.RouteRequest{From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto})
	var re *domain.RouteError
	require.True(t, errors.As(err, &re))

	_, err = p.Route(context.Background(), domain.RouteRequest{
		From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto, DepartureTime: "late",
	})
	require.True(t, errors.As(err, &re))

	_, err = p.Route(context.Background(), domain.RouteRequest{Profile: "rocket"})
	var ipe *domain.InvalidProfileError
	assert.True(t, errors.As(err, &ipe))

	_, err = NewGoogleProvider(" ", "http://example.test", nil, newTestClient(nil, nil))
	assert.Error(t, err)
}
