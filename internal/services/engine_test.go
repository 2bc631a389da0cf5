package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"homerank/internal/adapters/cache"
	"homerank/internal/domain"
	"homerank/internal/platform/obs"
	"homerank/internal/services"
	"homerank/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	home   = domain.Coordinates{Lat: 52.52, Lon: 13.405}
	work   = domain.Coordinates{Lat: 52.50, Lon: 13.39}
	gymA   = domain.Coordinates{Lat: 52.53, Lon: 13.41}
	gymB   = domain.Coordinates{Lat: 52.54, Lon: 13.42}
	school = domain.Coordinates{Lat: 52.51, Lon: 13.38}
)

func coords(c domain.Coordinates) *domain.Coordinates { return &c }

func TestScore_WeightedRoundTrip(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithRoundTrip(home, work, 10)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Weight: domain.Weight(2.0), Coords: coords(work)}},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	require.Len(t, report.Routes, 1)

	r := report.Routes[0]
	assert.Equal(t, "Home", r.Origin)
	assert.Equal(t, "Work", r.Destination)
	assert.Equal(t, domain.ProfileAuto, r.Profile)
	assert.InDelta(t, 10.0, r.ToTime, 1e-9)
	assert.InDelta(t, 10.0, r.FromTime, 1e-9)
	assert.InDelta(t, 20.0, r.TravelTime, 1e-9)
	assert.InDelta(t, 20.0, r.NormalTime, 1e-9)
	assert.InDelta(t, 2.0, r.Weight, 1e-9)
	assert.InDelta(t, 40.0, r.WeightedTime, 1e-9)
	assert.Nil(t, r.TrafficTime)

	s := report.Scores[0]
	assert.Equal(t, "Home", s.Name)
	assert.Equal(t, home, s.Coords)
	assert.InDelta(t, 40.0, s.TotalScore, 1e-9)
	assert.Equal(t, 1, s.ValidRoutes)
	assert.InDelta(t, 40.0, s.AvgScore, 1e-9)
}

func TestScore_OriginAtZeroZero(t *testing.T) {
	zero := domain.Coordinates{}
	p := testutil.NewStubProvider("stub").WithRoundTrip(zero, work, 10)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "D", Weight: domain.Weight(2.0), Coords: coords(work)}},
		[]domain.Origin{{Name: "O", Coords: coords(zero)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.InDelta(t, 40.0, report.Routes[0].WeightedTime, 1e-9)
	assert.InDelta(t, 40.0, report.Scores[0].TotalScore, 1e-9)
	assert.Equal(t, 1, report.Scores[0].ValidRoutes)
	assert.InDelta(t, 40.0, report.Scores[0].AvgScore, 1e-9)
	assert.Zero(t, p.GeocodeCalls())
}

func TestScore_DefaultWeightIsOne(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithRoundTrip(home, work, 7)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)
	assert.InDelta(t, 1.0, report.Routes[0].Weight, 1e-9)
	assert.InDelta(t, 14.0, report.Routes[0].WeightedTime, 1e-9)
}

func TestScore_ZeroAndNegativeWeightsAreKept(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, work, 10).
		WithRoundTrip(home, school, 5)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{
			{Name: "Work", Weight: domain.Weight(0), Coords: coords(work)},
			{Name: "School", Weight: domain.Weight(-1), Coords: coords(school)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)

	s := report.Scores[0]
	assert.Equal(t, 2, s.ValidRoutes)
	assert.InDelta(t, -10.0, s.TotalScore, 1e-9)
	assert.InDelta(t, -5.0, s.AvgScore, 1e-9)
}

func TestScore_GroupKeepsCheapestMemberWithFirstWeight(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, gymA, 4).  // 8 round trip
		WithRoundTrip(home, gymB, 2.5) // 5 round trip

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{
			{Name: "Gym A", Group: "G", Weight: domain.Weight(3.0), Coords: coords(gymA)},
			{Name: "Gym B", Group: "G", Weight: domain.Weight(1.0), Coords: coords(gymB)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)

	r := report.Routes[0]
	assert.Equal(t, "Gym B", r.Destination)
	assert.Equal(t, "G", r.Group)
	assert.InDelta(t, 5.0, r.TravelTime, 1e-9)
	assert.InDelta(t, 3.0, r.Weight, 1e-9)
	assert.InDelta(t, 15.0, r.WeightedTime, 1e-9)

	require.Len(t, report.Scores, 1)
	assert.Equal(t, 1, report.Scores[0].ValidRoutes)
	assert.InDelta(t, 15.0, report.Scores[0].TotalScore, 1e-9)
}

func TestScore_GroupTieGoesToFirstMember(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, gymA, 5).
		WithRoundTrip(home, gymB, 5)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{
			{Name: "Gym A", Group: "G", Coords: coords(gymA)},
			{Name: "Gym B", Group: "G", Coords: coords(gymB)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)
	assert.Equal(t, "Gym A", report.Routes[0].Destination)
}

func TestScore_GroupSkipsUnreachableMembers(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRouteError(home, gymA, errors.New("boom")).
		WithRoundTrip(home, gymB, 6)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{
			{Name: "Gym A", Group: "G", Weight: domain.Weight(2), Coords: coords(gymA)},
			{Name: "Gym B", Group: "G", Coords: coords(gymB)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)
	assert.Equal(t, "Gym B", report.Routes[0].Destination)
	// Weight still comes from the first member, reachable or not.
	assert.InDelta(t, 2.0, report.Routes[0].Weight, 1e-9)
	assert.InDelta(t, 24.0, report.Routes[0].WeightedTime, 1e-9)
}

func TestScore_GroupWithoutReachableMemberContributesNothing(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithRoundTrip(home, work, 10)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{
			{Name: "Gym A", Group: "G", Coords: coords(gymA)},
			{Name: "Gym B", Group: "G", Coords: coords(gymB)},
			{Name: "Work", Coords: coords(work)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, 1, report.Scores[0].ValidRoutes)
	assert.Equal(t, "Work", report.Routes[0].Destination)
}

func TestScore_GroupsBeforeIndividuals(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, work, 10).
		WithRoundTrip(home, gymA, 3).
		WithRoundTrip(home, school, 4)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{
			{Name: "Work", Coords: coords(work)},
			{Name: "Gym A", Group: "Sport", Coords: coords(gymA)},
			{Name: "School", Coords: coords(school)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 3)
	assert.Equal(t, "Gym A", report.Routes[0].Destination)
	assert.Equal(t, "Work", report.Routes[1].Destination)
	assert.Equal(t, "School", report.Routes[2].Destination)
}

func TestScore_OneLegFailingDropsRoundTrip(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithLeg(home, work, 10).
		WithRoundTrip(home, school, 4)

	counters := obs.NewCounters()
	report, err := services.NewEngine(p, services.WithCounters(counters)).Score(context.Background(),
		[]domain.Destination{
			{Name: "Work", Coords: coords(work)},
			{Name: "School", Coords: coords(school)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)
	assert.Equal(t, "School", report.Routes[0].Destination)
	assert.Equal(t, int64(4), counters.Get(obs.RouteCalls))
	assert.Equal(t, int64(1), counters.Get(obs.RouteFailures))
}

func TestScore_EmptyResultCountsAsFailure(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithResult(home, work, domain.RouteResult{}).
		WithLeg(work, home, 10)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	assert.Empty(t, report.Routes)
	assert.True(t, report.NoValidData())
}

func TestScore_GeocodeFailureUsesSentinel(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithPlace("Work", work)

	counters := obs.NewCounters()
	report, err := services.NewEngine(p, services.WithCounters(counters)).Score(context.Background(),
		[]domain.Destination{{Name: "Work"}},
		[]domain.Origin{{Name: "Nowhere"}},
	)
	require.NoError(t, err)

	require.Len(t, report.Origins, 1)
	require.NotNil(t, report.Origins[0].Coords)
	assert.Equal(t, domain.SentinelCoordinates, *report.Origins[0].Coords)
	require.NotNil(t, report.Destinations[0].Coords)
	assert.Equal(t, work, *report.Destinations[0].Coords)

	// Routing is still attempted from the sentinel and fails.
	assert.Equal(t, 1, p.RouteCalls())
	assert.Empty(t, report.Scores)
	assert.True(t, report.NoValidData())

	assert.Equal(t, int64(2), counters.Get(obs.GeocodeCalls))
	assert.Equal(t, int64(1), counters.Get(obs.GeocodeFailures))
}

func TestScore_SentinelOriginIsScoredWhenRoutable(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithRoundTrip(domain.SentinelCoordinates, work, 30)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{{Name: "Nowhere"}},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, domain.SentinelCoordinates, report.Scores[0].Coords)
}

func TestScore_KnownCoordinatesSkipGeocoding(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithRoundTrip(home, work, 1)

	_, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	assert.Zero(t, p.GeocodeCalls())
}

func TestScore_DoesNotMutateInputs(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithPlace("Home", home).
		WithPlace("Work", work).
		WithRoundTrip(home, work, 1)

	dests := []domain.Destination{{Name: "Work"}}
	origins := []domain.Origin{{Name: "Home"}}

	report, err := services.NewEngine(p).Score(context.Background(), dests, origins)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)

	assert.Nil(t, dests[0].Coords)
	assert.Nil(t, origins[0].Coords)
}

func TestScore_TrafficSubstitution(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithResult(home, work, domain.RouteResult{
			TimeMinutes:        domain.Float(10),
			TrafficTimeMinutes: domain.Float(12),
			DistanceKm:         domain.Float(5),
		}).
		WithResult(work, home, domain.RouteResult{
			TimeMinutes: domain.Float(10),
			DistanceKm:  domain.Float(5.5),
		})

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)

	r := report.Routes[0]
	assert.InDelta(t, 12.0, r.ToTime, 1e-9)
	assert.InDelta(t, 10.0, r.FromTime, 1e-9)
	assert.InDelta(t, 22.0, r.TravelTime, 1e-9)
	assert.InDelta(t, 20.0, r.NormalTime, 1e-9)
	require.NotNil(t, r.TrafficTime)
	assert.InDelta(t, 22.0, *r.TrafficTime, 1e-9)
	require.NotNil(t, r.TrafficImpactPercent)
	assert.InDelta(t, 10.0, *r.TrafficImpactPercent, 1e-9)
	require.NotNil(t, r.DistanceKm)
	assert.InDelta(t, 10.5, *r.DistanceKm, 1e-9)
}

func TestScore_ProfileOverrideAndTimeHints(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, work, 20).
		WithRoundTrip(home, school, 5)

	_, err := services.NewEngine(p, services.WithProfile(domain.ProfileBicycle)).Score(context.Background(),
		[]domain.Destination{
			{
				Name:              "Work",
				Profile:           domain.ProfileBus,
				DepartureTimeTo:   "08:00",
				DepartureTimeFrom: "17:30",
				DayOfWeek:         "Monday",
				Coords:            coords(work),
			},
			{Name: "School", Coords: coords(school)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)

	reqs := p.Requests()
	require.Len(t, reqs, 4)

	assert.Equal(t, domain.RouteRequest{
		From: home, To: work, Profile: domain.ProfileBus, DepartureTime: "08:00", DayOfWeek: "Monday",
	}, reqs[0])
	assert.Equal(t, domain.RouteRequest{
		From: work, To: home, Profile: domain.ProfileBus, DepartureTime: "17:30", DayOfWeek: "Monday",
	}, reqs[1])
	assert.Equal(t, domain.ProfileBicycle, reqs[2].Profile)
	assert.Equal(t, domain.ProfileBicycle, reqs[3].Profile)
}

func TestScore_RanksAscendingAndOmitsUnscoredOrigins(t *testing.T) {
	far := domain.Coordinates{Lat: 48.1, Lon: 11.5}
	lost := domain.Coordinates{Lat: 10, Lon: 10}
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(far, work, 90).
		WithRoundTrip(home, work, 15).
		WithRoundTrip(school, work, 15)

	report, err := services.NewEngine(p).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{
			{Name: "Far", Coords: coords(far)},
			{Name: "Lost", Coords: coords(lost)},
			{Name: "Home", Coords: coords(home)},
			{Name: "School side", Coords: coords(school)},
		},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 3)
	assert.Equal(t, "Home", report.Scores[0].Name)
	assert.Equal(t, "School side", report.Scores[1].Name)
	assert.Equal(t, "Far", report.Scores[2].Name)

	// Routes follow origin input order, not rank.
	require.Len(t, report.Routes, 3)
	assert.Equal(t, "Far", report.Routes[0].Origin)
	assert.Len(t, report.Origins, 4)

	sum := report.Summary()
	assert.Equal(t, 3, sum.OriginCount)
	assert.Equal(t, "Home", sum.BestOrigin)
	require.NotNil(t, sum.BestAvgScore)
	assert.InDelta(t, 30.0, *sum.BestAvgScore, 1e-9)
	require.NotNil(t, sum.BestTotalScore)
	assert.InDelta(t, 30.0, *sum.BestTotalScore, 1e-9)
}

func TestScore_EmptyInputs(t *testing.T) {
	report, err := services.NewEngine(testutil.NewStubProvider("stub")).Score(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Scores)
	assert.Empty(t, report.Routes)
	assert.True(t, report.NoValidData())
}

func TestScore_ConcurrentMatchesSequential(t *testing.T) {
	dests, origins, p := randomScenario(t, 12, 9)

	seq, err := services.NewEngine(p).Score(context.Background(), dests, origins)
	require.NoError(t, err)

	par, err := services.NewEngine(p, services.WithConcurrency(4)).Score(context.Background(), dests, origins)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestScore_ProgressReportsEveryOrigin(t *testing.T) {
	dests, origins, p := randomScenario(t, 5, 7)

	var (
		mu    sync.Mutex
		seen  []int
		total int
	)
	progress := func(done, n int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, done)
		total = n
	}

	_, err := services.NewEngine(p, services.WithConcurrency(3), services.WithProgress(progress)).
		Score(context.Background(), dests, origins)
	require.NoError(t, err)

	assert.Len(t, seen, len(origins))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7}, seen)
	assert.Equal(t, len(origins), total)
}

func TestScore_CancellationReturnsPartialReport(t *testing.T) {
	second := domain.Coordinates{Lat: 52.6, Lon: 13.5}
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, work, 10).
		WithRoundTrip(second, work, 20)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel while the first origin is in flight; its work completes.
	p.OnRoute = func(_ context.Context, req domain.RouteRequest) {
		if req.From == home {
			cancel()
		}
	}

	report, err := services.NewEngine(p).Score(ctx,
		[]domain.Destination{{Name: "Work", Coords: coords(work)}},
		[]domain.Origin{
			{Name: "Home", Coords: coords(home)},
			{Name: "Second", Coords: coords(second)},
		},
	)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, "Home", report.Scores[0].Name)
	assert.InDelta(t, 20.0, report.Scores[0].TotalScore, 1e-9)
	assert.Equal(t, 2, p.RouteCalls())
}

func TestScore_CallTimeoutFailsOnlyTheSlowLeg(t *testing.T) {
	p := testutil.NewStubProvider("stub").
		WithRoundTrip(home, work, 10).
		WithRoundTrip(home, school, 5)
	p.OnRoute = func(ctx context.Context, req domain.RouteRequest) {
		if req.To == work {
			<-ctx.Done()
		}
	}

	report, err := services.NewEngine(p, services.WithCallTimeout(20*time.Millisecond)).Score(context.Background(),
		[]domain.Destination{
			{Name: "Work", Coords: coords(work)},
			{Name: "School", Coords: coords(school)},
		},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Routes, 1)
	assert.Equal(t, "School", report.Routes[0].Destination)
}

func TestScore_CachedRerunIsIdentical(t *testing.T) {
	dests, origins, p := randomScenario(t, 4, 3)
	store := cache.NewMemoryStore()
	engine := services.NewEngine(cache.NewCachedProvider(p, store))

	first, err := engine.Score(context.Background(), dests, origins)
	require.NoError(t, err)
	calls := p.RouteCalls()

	second, err := engine.Score(context.Background(), dests, origins)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, calls, p.RouteCalls())
}

type downStore struct{}

func (downStore) Get(context.Context, string) (*domain.CacheEntry, error) {
	return nil, errors.New("connection refused")
}

func (downStore) Put(context.Context, domain.CacheEntry) error {
	return errors.New("connection refused")
}

func TestScore_CacheOutagePassesThrough(t *testing.T) {
	p := testutil.NewStubProvider("stub").WithRoundTrip(home, work, 10)
	counters := obs.NewCounters()
	provider := cache.NewCachedProvider(p, downStore{}, cache.WithCounters(counters))

	report, err := services.NewEngine(provider, services.WithCounters(counters)).Score(context.Background(),
		[]domain.Destination{{Name: "Work", Weight: domain.Weight(2), Coords: coords(work)}},
		[]domain.Origin{{Name: "Home", Coords: coords(home)}},
	)
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.InDelta(t, 40.0, report.Scores[0].AvgScore, 1e-9)
	assert.Equal(t, 2, p.RouteCalls())
	assert.Positive(t, counters.Get(obs.CacheErrors))
}
