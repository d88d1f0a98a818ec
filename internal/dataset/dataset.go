// Package dataset reads and writes the static restaurant file.
//
// The file is a JSON array of objects carrying at least "name" and "Address".
// Coordinates are optional and may come as "Latitude"/"Longitude" or as the
// coarser "City Latitude"/"City Longitude"; explicit ones win when both exist.
// Files written by Save mark resolved coordinates with "Geocoded": true, and
// those coordinates are loaded as the restaurant's location.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned when a dataset entry misses a required field.
var ErrInvalidRecord = errors.New("invalid restaurant record")

type record struct {
	Name          string   `json:"name"                     validate:"required"`
	Address       string   `json:"Address"                  validate:"required"`
	Latitude      *float64 `json:"Latitude,omitempty"`
	Longitude     *float64 `json:"Longitude,omitempty"`
	CityLatitude  *float64 `json:"City Latitude,omitempty"`
	CityLongitude *float64 `json:"City Longitude,omitempty"`
	Geocoded      bool     `json:"Geocoded,omitempty"`
}

func (r record) supplied() *models.Coordinates {
	switch {
	case r.Latitude != nil && r.Longitude != nil:
		return &models.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
	case r.CityLatitude != nil && r.CityLongitude != nil:
		return &models.Coordinates{Latitude: *r.CityLatitude, Longitude: *r.CityLongitude}
	default:
		return nil
	}
}

// Load reads the dataset file at path.
func Load(path string) ([]models.Restaurant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes a dataset. Restaurant IDs are 1-based positions in the array.
// Supplied coordinates are kept aside; Location is set only for records marked
// as geocoded.
func Parse(r io.Reader) ([]models.Restaurant, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	restaurants := make([]models.Restaurant, 0, len(records))

	for idx, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w at index %d: %w", ErrInvalidRecord, idx, err)
		}

		restaurant := models.Restaurant{
			ID:       idx + 1,
			Name:     rec.Name,
			Address:  rec.Address,
			Supplied: rec.supplied(),
		}
		if rec.Geocoded && rec.Latitude != nil && rec.Longitude != nil {
			location := models.Coordinates{Latitude: *rec.Latitude, Longitude: *rec.Longitude}
			restaurant.Location = &location
		}

		restaurants = append(restaurants, restaurant)
	}

	return restaurants, nil
}

// Save writes restaurants to path in the dataset format. Resolved locations are
// written as "Latitude"/"Longitude" marked geocoded, so loading the output
// does not geocode them again under any coordinate policy.
func Save(path string, restaurants []models.Restaurant) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	if err = Write(file, restaurants); err != nil {
		_ = file.Close()
		return err
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close dataset: %w", err)
	}

	return nil
}

// Write encodes restaurants in the dataset format.
func Write(w io.Writer, restaurants []models.Restaurant) error {
	records := make([]record, 0, len(restaurants))
	for _, restaurant := range restaurants {
		rec := record{Name: restaurant.Name, Address: restaurant.Address}

		coords := restaurant.Location
		if coords != nil {
			rec.Geocoded = true
		} else {
			coords = restaurant.Supplied
		}
		if coords != nil {
			rec.Latitude = &coords.Latitude
			rec.Longitude = &coords.Longitude
		}

		records = append(records, rec)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	return nil
}
