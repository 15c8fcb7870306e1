package cables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagoresarker/cabletrace/internal/models"
)

// Two toy cables: one between Lisbon and New York, one along the English
// Channel with a sub-path per landing.
const collection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"id": "atlantic-test", "name": "Atlantic Test", "color": "#3b7"},
      "geometry": {"type": "MultiLineString", "coordinates": [
        [[-9.14, 38.72], [-40.0, 40.0], [-74.0, 40.71]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"id": "channel-test", "name": "Channel Test", "color": "#c33"},
      "geometry": {"type": "MultiLineString", "coordinates": [
        [[1.31, 51.13], [1.6, 50.9]],
        [[1.6, 50.9], [1.85, 50.95]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"name": "no id"},
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}
    }
  ]
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(collection))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	cable, ok := c.Get("channel-test")
	require.True(t, ok)
	assert.Equal(t, "Channel Test", cable.Name)
	assert.Equal(t, "#c33", cable.Color)
	assert.Len(t, cable.Endpoints, 4)
	assert.Equal(t, models.Coordinate{Lat: 51.13, Lon: 1.31}, cable.Endpoints[0])
	assert.Len(t, c.Collection().Features, 3)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cable-geo.json")
	require.NoError(t, os.WriteFile(path, []byte(collection), 0o644))

	c, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(collection), c.Raw())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestNearest(t *testing.T) {
	c, err := Parse([]byte(collection))
	require.NoError(t, err)

	lisbon := models.Coordinate{Lat: 38.7, Lon: -9.1}
	newYork := models.Coordinate{Lat: 40.7, Lon: -74.0}

	m, err := c.Nearest(lisbon, newYork, 30)
	require.NoError(t, err)
	assert.Equal(t, "atlantic-test", m.ID)
	assert.Equal(t, models.Coordinate{Lat: 38.72, Lon: -9.14}, m.EndpointA)
	assert.Equal(t, models.Coordinate{Lat: 40.71, Lon: -74.0}, m.EndpointB)
	assert.Less(t, m.AvgDistanceKm, 30.0)
}

func TestNearest_SameEndpointIsNoCable(t *testing.T) {
	c, err := Parse([]byte(collection))
	require.NoError(t, err)

	// both positions sit next to the same Lisbon landing
	a := models.Coordinate{Lat: 38.72, Lon: -9.14}
	b := models.Coordinate{Lat: 38.73, Lon: -9.15}
	_, err = c.Nearest(a, b, 5000)
	assert.ErrorIs(t, err, ErrNoCable)
}

func TestNearest_OutsideTolerance(t *testing.T) {
	c, err := Parse([]byte(collection))
	require.NoError(t, err)

	tokyo := models.Coordinate{Lat: 35.68, Lon: 139.69}
	sydney := models.Coordinate{Lat: -33.87, Lon: 151.21}
	_, err = c.Nearest(tokyo, sydney, 30)
	assert.ErrorIs(t, err, ErrNoCable)
}

func TestAnnotate(t *testing.T) {
	c, err := Parse([]byte(collection))
	require.NoError(t, err)

	hops := []models.Hop{
		{IPs: []string{"a"}, Latitude: 38.7, Longitude: -9.1},
		{IPs: []string{"b"}, Latitude: 40.7, Longitude: -74.0},
		{IPs: []string{"c"}, Latitude: 40.8, Longitude: -73.9},
	}

	out := c.Annotate(hops, 30)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].ExitCable)
	assert.Equal(t, "atlantic-test", out[0].ExitCable.ID)
	require.NotNil(t, out[1].EntryCable)
	assert.Equal(t, "atlantic-test", out[1].EntryCable.ID)
	assert.Nil(t, out[1].ExitCable)
	assert.Nil(t, out[2].EntryCable)

	assert.InDelta(t, 5400, out[0].DistanceFrom, 200)
	assert.Equal(t, out[0].DistanceFrom, out[1].DistanceTo)

	assert.Nil(t, hops[0].ExitCable, "input untouched")
}

func TestDistanceKm(t *testing.T) {
	london := models.Coordinate{Lat: 51.5074, Lon: -0.1278}
	paris := models.Coordinate{Lat: 48.8566, Lon: 2.3522}
	assert.InDelta(t, 343, DistanceKm(london, paris), 5)
}

func TestAnnotate_AnchorsAtFacility(t *testing.T) {
	c, err := Parse([]byte(collection))
	require.NoError(t, err)

	// geolocation puts both routers inland; their facilities sit at the landings
	hops := []models.Hop{
		{IPs: []string{"a"}, Latitude: 41.15, Longitude: -8.6,
			Facility: &models.Facility{Name: "Lisbon CLS", Latitude: 38.7, Longitude: -9.1}},
		{IPs: []string{"b"}, Latitude: 42.65, Longitude: -73.75,
			Facility: &models.Facility{Name: "NYC CLS", Latitude: 40.7, Longitude: -74.0}},
	}

	out := c.Annotate(hops, 30)
	require.NotNil(t, out[0].ExitCable)
	assert.Equal(t, "atlantic-test", out[0].ExitCable.ID)
	require.NotNil(t, out[1].EntryCable)
	assert.Equal(t, models.Coordinate{Lat: 40.71, Lon: -74.0}, out[1].EntryCable.EntryPoint)
	assert.Equal(t, DistanceKm(hops[0].Position(), hops[1].Position()), out[0].DistanceFrom)
}
