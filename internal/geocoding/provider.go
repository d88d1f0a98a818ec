package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, address string) (*models.Coordinates, error)

// Geocode calls f(ctx, address).
func (f ProviderFunc) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	return f(ctx, address)
}

// IsEmptyResult reports whether err means the provider answered but found nothing.
func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrNominatimEmptyResponse)
}
