package dataset_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/hestia/internal/dataset"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `[
  {"name": "Joe's Pizza", "Address": "7 Carmine St, New York, NY 10014"},
  {"name": "Peter Luger", "Address": "178 Broadway, Brooklyn, NY 11211", "Latitude": 40.7099, "Longitude": -73.9624},
  {"name": "Katz's Delicatessen", "Address": "205 E Houston St, New York, NY 10002",
   "City Latitude": 40.7128, "City Longitude": -74.0060},
  {"name": "Both", "Address": "1 Both St", "Latitude": 1, "Longitude": 2, "City Latitude": 3, "City Longitude": 4},
  {"name": "Half", "Address": "1 Half St", "Latitude": 1}
]`

func TestLoad(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "restaurants.json")
	filet.File(t, path, sampleDataset)

	restaurants, err := dataset.Load(path)

	require.NoError(t, err)
	require.Len(t, restaurants, 5)

	assert.Equal(t, 1, restaurants[0].ID)
	assert.Equal(t, "Joe's Pizza", restaurants[0].Name)
	assert.Equal(t, "7 Carmine St, New York, NY 10014", restaurants[0].Address)
	assert.Nil(t, restaurants[0].Supplied)

	require.NotNil(t, restaurants[1].Supplied)
	assert.InDelta(t, 40.7099, restaurants[1].Supplied.Latitude, 1e-9)
	assert.InDelta(t, -73.9624, restaurants[1].Supplied.Longitude, 1e-9)

	require.NotNil(t, restaurants[2].Supplied)
	assert.InDelta(t, 40.7128, restaurants[2].Supplied.Latitude, 1e-9)

	require.NotNil(t, restaurants[3].Supplied)
	assert.InDelta(t, 1, restaurants[3].Supplied.Latitude, 1e-9, "explicit coordinates win over city ones")

	assert.Nil(t, restaurants[4].Supplied, "a lone latitude is not a position")

	for _, r := range restaurants {
		assert.Nil(t, r.Location, "location is only set by the catalog")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := dataset.Load(filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open dataset")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"not json", `nope`, "failed to decode dataset"},
		{"object instead of array", `{"name":"x"}`, "failed to decode dataset"},
		{"missing name", `[{"Address":"1 Main St"}]`, "invalid restaurant record at index 0"},
		{"missing address", `[{"name":"ok","Address":"a"},{"name":"Nameless"}]`, "invalid restaurant record at index 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restaurants, err := dataset.Parse(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.Nil(t, restaurants)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_EmptyArray(t *testing.T) {
	restaurants, err := dataset.Parse(strings.NewReader(`[]`))

	require.NoError(t, err)
	assert.Empty(t, restaurants)
}

func TestSaveThenLoad(t *testing.T) {
	defer filet.CleanUp(t)

	path := filepath.Join(filet.TmpDir(t, ""), "precomputed.json")
	restaurants := []models.Restaurant{
		{ID: 1, Name: "Located", Address: "1 Here St", Location: &models.Coordinates{Latitude: 40.73, Longitude: -73.93}},
		{ID: 2, Name: "Supplied", Address: "2 There St", Supplied: &models.Coordinates{Latitude: 40.71, Longitude: -74.0}},
		{ID: 3, Name: "Lost", Address: "3 Nowhere St"},
	}

	require.NoError(t, dataset.Save(path, restaurants))
	assert.True(t, filet.Exists(t, path))

	loaded, err := dataset.Load(path)

	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.NotNil(t, loaded[0].Location, "resolved locations stay resolved")
	assert.InDelta(t, 40.73, loaded[0].Location.Latitude, 1e-9)
	require.NotNil(t, loaded[0].Supplied)
	assert.InDelta(t, 40.73, loaded[0].Supplied.Latitude, 1e-9)

	assert.Nil(t, loaded[1].Location, "supplied coordinates are not promoted")
	require.NotNil(t, loaded[1].Supplied)
	assert.InDelta(t, -74.0, loaded[1].Supplied.Longitude, 1e-9)

	assert.Nil(t, loaded[2].Location)
	assert.Nil(t, loaded[2].Supplied)
}

func TestWrite_Format(t *testing.T) {
	var buf bytes.Buffer

	err := dataset.Write(&buf, []models.Restaurant{{Name: "Lost", Address: "3 Nowhere St"}})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"name": "Lost"`)
	assert.Contains(t, buf.String(), `"Address": "3 Nowhere St"`)
	assert.NotContains(t, buf.String(), "Latitude")
	assert.NotContains(t, buf.String(), "Geocoded")
}

func TestParse_GeocodedMarker(t *testing.T) {
	input := `[
  {"name": "Marked", "Address": "1 Here St", "Latitude": 40.73, "Longitude": -73.93, "Geocoded": true},
  {"name": "City only", "Address": "2 There St", "City Latitude": 40.71, "City Longitude": -74.0, "Geocoded": true}
]`

	restaurants, err := dataset.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	require.NotNil(t, restaurants[0].Location)
	assert.InDelta(t, -73.93, restaurants[0].Location.Longitude, 1e-9)
	assert.Nil(t, restaurants[1].Location, "city coordinates are never a resolved location")
}
