package routing

import (
	"context"
	"errors"
	"testing"

	"homerank/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sanFrancisco = domain.Coordinates{Lat: 37.7749, Lon: -122.4194}
	losAngeles   = domain.Coordinates{Lat: 34.0522, Lon: -118.2437}
)

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 559.1, haversineKm(sanFrancisco, losAngeles), 1.0)
	assert.Equal(t, 0.0, haversineKm(sanFrancisco, sanFrancisco))
	assert.InDelta(t, 111.19, haversineKm(domain.Coordinates{}, domain.Coordinates{Lat: 1}), 0.01)
}

func TestOfflineRouteSpeeds(t *testing.T) {
	est := NewOfflineEstimator(nil)
	from := domain.Coordinates{}
	to := domain.Coordinates{Lat: 1}
	km := haversineKm(from, to)

	tests := []struct {
		profile domain.Profile
		speed   float64
	}{
		{domain.ProfileAuto, 40},
		{domain.ProfileBicycle, 15},
		{domain.ProfilePedestrian, 5},
		{domain.ProfileBus, 25},
		{domain.ProfileMotorScooter, 35},
		{domain.ProfileTruck, 30},
		{domain.Profile("hovercraft"), 40},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			res, err := est.Route(context.Background(), domain.RouteRequest{From: from, To: to, Profile: tt.profile})
			require.NoError(t, err)
			require.NotNil(t, res.TimeMinutes)
			assert.InDelta(t, km/tt.speed*60, *res.TimeMinutes, 1e-9)
			assert.InDelta(t, km, *res.DistanceKm, 1e-9)
			assert.Nil(t, res.TrafficTimeMinutes)
		})
	}
}

func TestOfflineRouteIsDeterministic(t *testing.T) {
	est := NewOfflineEstimator(nil)
	req := domain.RouteRequest{
		From:          sanFrancisco,
		To:            losAngeles,
		Profile:       domain.ProfileAuto,
		DepartureTime: "08:15",
		DayOfWeek:     "Tuesday",
	}

	first, err := est.Route(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := est.Route(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestOfflineRushHour(t *testing.T) {
	est := NewOfflineEstimator(nil)
	base := domain.RouteRequest{From: sanFrancisco, To: losAngeles, Profile: domain.ProfileAuto}

	tests := []struct {
		name       string
		depart     string
		day        string
		wantFactor *float64
	}{
		{"weekday morning rush", "07:30", "Monday", domain.Float(1.3)},
		{"weekday upper bound", "09:59", "Friday", domain.Float(1.3)},
		{"weekday evening rush", "17:00", "wed", domain.Float(1.3)},
		{"weekday off peak", "12:00", "Thursday", domain.Float(1.0)},
		{"weekend rush hour", "08:00", "Saturday", domain.Float(1.0)},
		{"no day given", "08:00", "", nil},
		{"unparseable time", "8am", "Monday", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.DepartureTime = tt.depart
			req.DayOfWeek = tt.day

			res, err := est.Route(context.Background(), req)
			require.NoError(t, err)

			if tt.wantFactor == nil {
				assert.Nil(t, res.TrafficTimeMinutes)
				assert.Nil(t, res.TrafficImpactPercent)
				return
			}
			factor := *tt.wantFactor
			require.NotNil(t, res.TrafficTimeMinutes)
			assert.InDelta(t, *res.TimeMinutes*factor, *res.TrafficTimeMinutes, 1e-9)
			assert.InDelta(t, (factor-1)*100, *res.TrafficImpactPercent, 1e-9)
		})
	}
}

func TestOfflineGeocode(t *testing.T) {
	est := NewOfflineEstimator(map[string]domain.Coordinates{
		"San Francisco": sanFrancisco,
		"Los Angeles":   losAngeles,
	})

	c, err := est.Geocode(context.Background(), "  san francisco ")
	require.NoError(t, err)
	assert.Equal(t, sanFrancisco, c)

	c, err = est.Geocode(context.Background(), "Union Square, San Francisco, CA")
	require.NoError(t, err)
	assert.Equal(t, sanFrancisco, c)

	_, err = est.Geocode(context.Background(), "Paris")
	var ge *domain.GeocodeError
	require.True(t, errors.As(err, &ge))
	assert.ErrorIs(t, err, domain.ErrNoMatch)

	withFallback := NewOfflineEstimator(nil, WithFallback(losAngeles))
	c, err = withFallback.Geocode(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, losAngeles, c)
}
