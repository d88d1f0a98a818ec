package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	testCases := []struct {
		name    string
		address string
		want    string
	}{
		{"already normalized", "7 carmine st", "7 carmine st"},
		{"case and spacing", "  7 Carmine   ST,\tNew York ", "7 carmine st, new york"},
		{"full width characters", "７ Ｃａｒｍｉｎｅ St", "7 carmine st"},
		{"blank", "   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.NormalizeAddress(tc.address))
		})
	}
}

func TestAddressCache_Lookup(t *testing.T) {
	coords := &models.Coordinates{Latitude: 40.7305, Longitude: -74.0023}

	t.Run("equivalent addresses resolve once", func(t *testing.T) {
		cache := service.NewAddressCache()
		var calls atomic.Int32
		resolve := func(_ context.Context, _ string) (*models.Coordinates, error) {
			calls.Add(1)
			return coords, nil
		}

		first, err := cache.Lookup(t.Context(), "7 Carmine St", resolve)
		require.NoError(t, err)
		second, err := cache.Lookup(t.Context(), "7  CARMINE st", resolve)
		require.NoError(t, err)

		assert.Equal(t, coords, first)
		assert.Equal(t, coords, second)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("failures are remembered", func(t *testing.T) {
		cache := service.NewAddressCache()
		errLookup := errors.New("lookup failed")
		var calls atomic.Int32
		resolve := func(_ context.Context, _ string) (*models.Coordinates, error) {
			calls.Add(1)
			return nil, errLookup
		}

		_, err := cache.Lookup(t.Context(), "nowhere", resolve)
		require.ErrorIs(t, err, errLookup)
		_, err = cache.Lookup(t.Context(), "Nowhere", resolve)
		require.ErrorIs(t, err, errLookup)

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("concurrent lookups share one resolution", func(t *testing.T) {
		cache := service.NewAddressCache()
		var calls atomic.Int32
		resolve := func(_ context.Context, _ string) (*models.Coordinates, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return coords, nil
		}

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := cache.Lookup(context.Background(), "7 Carmine St", resolve)
				assert.NoError(t, err)
				assert.Equal(t, coords, got)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})
}
