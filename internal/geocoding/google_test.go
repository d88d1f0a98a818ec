package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleProvider_Geocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api returns zero results", func(t *testing.T) {
		address := "zzzzqqqq123 notaplace"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		assert.True(t, geocoding.IsEmptyResult(err))
		mockClient.AssertExpectations(t)
	})

	t.Run("blank address skips the api", func(t *testing.T) {
		coords, err := provider.Geocode(ctx, "   ")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
	})

	t.Run("successful geocoding", func(t *testing.T) {
		address := "350 5th Ave, New York, NY 10118"
		req := &maps.GeocodingRequest{Address: address}
		mockResponse := []maps.GeocodingResult{
			{
				FormattedAddress: "350 5th Ave, New York, NY 10118, USA",
				Geometry: maps.AddressGeometry{
					Location:     maps.LatLng{Lat: 40.7484, Lng: -73.9857},
					LocationType: "ROOFTOP",
				},
			},
		}

		mockClient.On("Geocode", ctx, req).Return(mockResponse, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, coords)
		require.InEpsilon(t, 40.7484, coords.Latitude, 0.0001)
		require.InEpsilon(t, -73.9857, coords.Longitude, 0.0001)
		mockClient.AssertExpectations(t)
	})
}
