package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// EnsureSchema creates the restaurants table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS public.restaurants (
			id                 SERIAL PRIMARY KEY,
			name               TEXT NOT NULL,
			address            TEXT NOT NULL,
			latitude           DOUBLE PRECISION,
			longitude          DOUBLE PRECISION,
			geocoding_attempts INTEGER NOT NULL DEFAULT 0,
			geocoding_error    TEXT
		);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create restaurants table: %w", err)
	}

	return nil
}

// LoadRestaurants returns every restaurant ordered by ID. Stored coordinates
// are reported as supplied ones, the catalog decides whether to trust them.
func (r *Repository) LoadRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	query := `
		SELECT id, name, address, latitude, longitude
		FROM public.restaurants
		ORDER BY id ASC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var (
			restaurant models.Restaurant
			lat, lon   *float64
		)
		if errScan := rows.Scan(&restaurant.ID, &restaurant.Name, &restaurant.Address, &lat, &lon); errScan != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", errScan)
		}
		if lat != nil && lon != nil {
			restaurant.Supplied = &models.Coordinates{Latitude: *lat, Longitude: *lon}
		}

		restaurants = append(restaurants, restaurant)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Restaurants loaded from database", "count", len(restaurants))

	return restaurants, nil
}

// UpdateRestaurantCoordinates stores the geocoded position of a restaurant
// and clears its last geocoding error.
func (r *Repository) UpdateRestaurantCoordinates(ctx context.Context, restaurantID int, coords models.Coordinates) error {
	query := `
		UPDATE public.restaurants
		SET
			latitude = $1,
			longitude = $2,
			geocoding_error = NULL
		WHERE
			id = $3;
	`

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, restaurantID)
	if err != nil {
		return fmt.Errorf("failed to update restaurant coordinates: %w", err)
	}

	return nil
}

// IncrementFailureCount bumps the geocoding attempt count of a restaurant and
// records the error message of the last failure.
func (r *Repository) IncrementFailureCount(ctx context.Context, restaurantID int, errMsg string) error {
	query := `
		UPDATE public.restaurants
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, restaurantID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
