package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/service"
	"github.com/UnknownOlympus/hestia/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errGeocode = errors.New("geocoding failed")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRestaurants() []models.Restaurant {
	return []models.Restaurant{
		{
			ID:       1,
			Name:     "Joe's Pizza",
			Address:  "7 Carmine St",
			Supplied: &models.Coordinates{Latitude: 40.7305, Longitude: -74.0023},
		},
		{ID: 2, Name: "Katz's Delicatessen", Address: "205 E Houston St"},
		{ID: 3, Name: "Carbone", Address: "181 Thompson St"},
	}
}

func newTestCatalog(
	t *testing.T,
	restaurants []models.Restaurant,
	resolver service.Resolver,
	sink service.CoordinateSink,
	workers int,
	policy service.CoordinatePolicy,
) (*service.Catalog, *metrics.Metrics) {
	t.Helper()
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	return service.NewCatalog(discardLogger(), restaurants, resolver, sink, appMetrics, workers, policy), appMetrics
}

func TestParseCoordinatePolicy(t *testing.T) {
	policy, err := service.ParseCoordinatePolicy("dataset")
	require.NoError(t, err)
	assert.Equal(t, service.PolicyDataset, policy)

	policy, err = service.ParseCoordinatePolicy("address")
	require.NoError(t, err)
	assert.Equal(t, service.PolicyAddress, policy)

	_, err = service.ParseCoordinatePolicy("guess")
	require.Error(t, err)
}

func TestNewCatalog_Policy(t *testing.T) {
	t.Run("dataset policy trusts supplied coordinates", func(t *testing.T) {
		catalog, _ := newTestCatalog(t, testRestaurants(), mocks.NewResolver(t), nil, 1, service.PolicyDataset)

		snapshot := catalog.Snapshot()
		require.NotNil(t, snapshot[0].Location)
		assert.Equal(t, *snapshot[0].Supplied, *snapshot[0].Location)
		assert.Equal(t, 2, catalog.Missing())
		assert.Equal(t, 3, catalog.Len())
	})

	t.Run("address policy leaves every location empty", func(t *testing.T) {
		catalog, _ := newTestCatalog(t, testRestaurants(), mocks.NewResolver(t), nil, 1, service.PolicyAddress)

		assert.Equal(t, 3, catalog.Missing())
	})

	t.Run("address policy keeps precomputed locations", func(t *testing.T) {
		restaurants := testRestaurants()
		restaurants[0].Location = &models.Coordinates{Latitude: 40.7305, Longitude: -74.0023}

		resolver := mocks.NewResolver(t)
		resolver.On("Resolve", mock.Anything, "205 E Houston St").Return(nil, errGeocode).Once()
		resolver.On("Resolve", mock.Anything, "181 Thompson St").Return(nil, errGeocode).Once()

		catalog, _ := newTestCatalog(t, restaurants, resolver, nil, 1, service.PolicyAddress)
		assert.Equal(t, 2, catalog.Missing())

		report := catalog.Locate(t.Context(), nil)

		assert.Equal(t, 2, report.Total())
		require.NotNil(t, catalog.Snapshot()[0].Location)
	})
}

func TestCatalog_Snapshot_IsCopy(t *testing.T) {
	catalog, _ := newTestCatalog(t, testRestaurants(), mocks.NewResolver(t), nil, 1, service.PolicyAddress)

	snapshot := catalog.Snapshot()
	snapshot[0].Name = "changed"
	snapshot[1].Location = &models.Coordinates{}

	fresh := catalog.Snapshot()
	assert.Equal(t, "Joe's Pizza", fresh[0].Name)
	assert.Nil(t, fresh[1].Location)
}

func TestCatalog_Locate(t *testing.T) {
	katz := &models.Coordinates{Latitude: 40.7223, Longitude: -73.9874}

	resolver := mocks.NewResolver(t)
	resolver.On("Resolve", mock.Anything, "7 Carmine St").Return(nil, errGeocode).Once()
	resolver.On("Resolve", mock.Anything, "205 E Houston St").Return(katz, nil).Once()
	resolver.On("Resolve", mock.Anything, "181 Thompson St").Return(nil, errGeocode).Once()

	sink := mocks.NewCoordinateSink(t)
	sink.On("UpdateRestaurantCoordinates", mock.Anything, 2, *katz).Return(nil).Once()
	sink.On("IncrementFailureCount", mock.Anything, 1, errGeocode.Error()).Return(nil).Once()
	sink.On("IncrementFailureCount", mock.Anything, 3, errGeocode.Error()).Return(errors.New("db down")).Once()

	catalog, appMetrics := newTestCatalog(t, testRestaurants(), resolver, sink, 2, service.PolicyAddress)

	var processed atomic.Int32
	report := catalog.Locate(t.Context(), func(models.Restaurant) { processed.Add(1) })

	assert.Equal(t, service.LocateReport{Located: 1, FellBack: 1, Failed: 1}, report)
	assert.Equal(t, 3, report.Total())
	assert.Equal(t, int32(3), processed.Load())

	snapshot := catalog.Snapshot()
	require.NotNil(t, snapshot[0].Location)
	assert.Equal(t, *snapshot[0].Supplied, *snapshot[0].Location)
	require.NotNil(t, snapshot[1].Location)
	assert.Equal(t, *katz, *snapshot[1].Location)
	assert.Nil(t, snapshot[2].Location)

	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RestaurantsLocated.WithLabelValues(metrics.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RestaurantsLocated.WithLabelValues(metrics.OutcomeFallback)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RestaurantsLocated.WithLabelValues(metrics.OutcomeFailure)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.ActiveWorkers), 0)
}

func TestCatalog_Locate_NothingPending(t *testing.T) {
	restaurants := []models.Restaurant{{
		ID:       1,
		Name:     "Joe's Pizza",
		Address:  "7 Carmine St",
		Supplied: &models.Coordinates{Latitude: 40.7305, Longitude: -74.0023},
	}}
	catalog, _ := newTestCatalog(t, restaurants, mocks.NewResolver(t), nil, 1, service.PolicyDataset)

	assert.Equal(t, service.LocateReport{}, catalog.Locate(t.Context(), nil))
}

func TestCatalog_Locate_SharedAddress(t *testing.T) {
	coords := &models.Coordinates{Latitude: 40.7305, Longitude: -74.0023}
	restaurants := []models.Restaurant{
		{ID: 1, Name: "Joe's Pizza", Address: "7 Carmine St"},
		{ID: 2, Name: "Joe's Pizza Upstairs", Address: "7  carmine st"},
	}

	resolver := mocks.NewResolver(t)
	resolver.On("Resolve", mock.Anything, mock.Anything).Return(coords, nil).Once()

	catalog, _ := newTestCatalog(t, restaurants, resolver, nil, 2, service.PolicyAddress)
	report := catalog.Locate(t.Context(), nil)

	assert.Equal(t, 2, report.Located)
	for _, restaurant := range catalog.Snapshot() {
		require.NotNil(t, restaurant.Location)
		assert.Equal(t, *coords, *restaurant.Location)
	}
}

func TestCatalog_Locate_SinkErrorIsNotFatal(t *testing.T) {
	coords := &models.Coordinates{Latitude: 40.7223, Longitude: -73.9874}
	restaurants := []models.Restaurant{{ID: 2, Name: "Katz's Delicatessen", Address: "205 E Houston St"}}

	resolver := mocks.NewResolver(t)
	resolver.On("Resolve", mock.Anything, "205 E Houston St").Return(coords, nil).Once()
	sink := mocks.NewCoordinateSink(t)
	sink.On("UpdateRestaurantCoordinates", mock.Anything, 2, *coords).Return(errors.New("db down")).Once()

	catalog, _ := newTestCatalog(t, restaurants, resolver, sink, 1, service.PolicyAddress)
	report := catalog.Locate(t.Context(), nil)

	assert.Equal(t, 1, report.Located)
	assert.Zero(t, catalog.Missing())
}

func TestCatalog_EnsureLocated(t *testing.T) {
	t.Run("runs the pass only once", func(t *testing.T) {
		resolver := mocks.NewResolver(t)
		resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, errGeocode).Times(3)

		catalog, _ := newTestCatalog(t, testRestaurants(), resolver, nil, 1, service.PolicyAddress)
		catalog.EnsureLocated(t.Context())
		catalog.EnsureLocated(t.Context())

		assert.Equal(t, 2, catalog.Missing())
	})

	t.Run("skips the pass when everything is located", func(t *testing.T) {
		restaurants := []models.Restaurant{{
			ID:       1,
			Name:     "Joe's Pizza",
			Address:  "7 Carmine St",
			Supplied: &models.Coordinates{Latitude: 40.7305, Longitude: -74.0023},
		}}
		catalog, _ := newTestCatalog(t, restaurants, mocks.NewResolver(t), nil, 1, service.PolicyDataset)

		catalog.EnsureLocated(t.Context())
	})

	t.Run("concurrent callers share one pass", func(t *testing.T) {
		coords := &models.Coordinates{Latitude: 40.7, Longitude: -74.0}
		resolver := mocks.NewResolver(t)
		resolver.On("Resolve", mock.Anything, "7 Carmine St").Return(coords, nil).Once()
		resolver.On("Resolve", mock.Anything, "205 E Houston St").Return(coords, nil).Once()
		resolver.On("Resolve", mock.Anything, "181 Thompson St").Return(coords, nil).Once()

		catalog, _ := newTestCatalog(t, testRestaurants(), resolver, nil, 3, service.PolicyAddress)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				catalog.EnsureLocated(t.Context())
				assert.Zero(t, catalog.Missing())
			}()
		}
		wg.Wait()
	})

	t.Run("ignores caller cancellation", func(t *testing.T) {
		coords := &models.Coordinates{Latitude: 40.7, Longitude: -74.0}
		restaurants := []models.Restaurant{{ID: 2, Name: "Katz's Delicatessen", Address: "205 E Houston St"}}
		resolver := mocks.NewResolver(t)
		resolver.On("Resolve", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		}), "205 E Houston St").Return(coords, nil).Once()

		catalog, _ := newTestCatalog(t, restaurants, resolver, nil, 1, service.PolicyAddress)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		catalog.EnsureLocated(ctx)

		assert.Zero(t, catalog.Missing())
	})
}
