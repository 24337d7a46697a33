package geo_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/geo"
)

func randomPoint(r *rand.Rand) geo.Point {
	return geo.Point{Lat: r.Float64()*180 - 90, Lon: r.Float64()*360 - 180}
}

func TestHaversineLaws(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a, b, c := randomPoint(r), randomPoint(r), randomPoint(r)

		assert.Zero(t, geo.Haversine(a, a))
		assert.InDelta(t, geo.Haversine(a, b), geo.Haversine(b, a), 1e-9)
		assert.LessOrEqual(t, geo.Haversine(a, c), geo.Haversine(a, b)+geo.Haversine(b, c)+1e-6)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// one degree of longitude on the equator
	d := geo.Haversine(geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 1})
	assert.InDelta(t, 2*math.Pi*geo.EarthRadiusKm/360, d, 1e-6)

	adyar := geo.Point{Lat: 13.0100, Lon: 80.2200}
	near := geo.Point{Lat: 13.0125, Lon: 80.2218}
	assert.InDelta(t, 0.34, geo.Haversine(adyar, near), 0.01)
}

func TestCentroidOfOnePoint(t *testing.T) {
	p := geo.Point{Lat: 13.01, Lon: 80.22}
	c, err := geo.Centroid([]geo.Point{p})
	require.NoError(t, err)
	assert.InDelta(t, p.Lat, c.Lat, 1e-9)
	assert.InDelta(t, p.Lon, c.Lon, 1e-9)
}

func TestCentroidAcrossAntimeridian(t *testing.T) {
	c, err := geo.Centroid([]geo.Point{{Lat: 0, Lon: 179}, {Lat: 0, Lon: -179}})
	require.NoError(t, err)
	assert.InDelta(t, 0, c.Lat, 1e-9)
	assert.InDelta(t, 180, math.Abs(c.Lon), 1e-9)
}

func TestCentroidEmpty(t *testing.T) {
	_, err := geo.Centroid(nil)
	require.ErrorIs(t, err, geo.ErrNoPoints)
}

func TestBoundingBox(t *testing.T) {
	center := geo.Point{Lat: 13.01, Lon: 80.22}
	box := geo.BoundingBox(center, 10)

	assert.False(t, box.LonOpen)
	assert.InDelta(t, 10/111.32, box.MaxLat-center.Lat, 1e-9)
	assert.Greater(t, box.MaxLon-center.Lon, box.MaxLat-center.Lat)
	assert.True(t, box.Contains(center))
	assert.False(t, box.Contains(geo.Point{Lat: 13.5, Lon: 80.22}))

	// every point within the radius must survive the prefilter
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		p := geo.Point{Lat: center.Lat + (r.Float64()-0.5)*0.2, Lon: center.Lon + (r.Float64()-0.5)*0.2}
		if geo.Haversine(center, p) <= 10 {
			assert.True(t, box.Contains(p), "point %v dropped by box", p)
		}
	}
}

func TestBoundingBoxOpensNearAntimeridian(t *testing.T) {
	box := geo.BoundingBox(geo.Point{Lat: 0, Lon: 179.99}, 50)
	assert.True(t, box.LonOpen)
	assert.True(t, box.Contains(geo.Point{Lat: 0, Lon: -179.99}))
}
