package reservation

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/iliyamo/table-reservation/internal/geo"
	"github.com/iliyamo/table-reservation/internal/model"
)

// NearbyRequest names the base point either by restaurant (preferred
// when both are set) or by area.  A non-positive RadiusKm means the
// configured default.
type NearbyRequest struct {
	Area         string
	RestaurantID uint64
	RadiusKm     float64
}

// NearbyRestaurant is a ranked result.
type NearbyRestaurant struct {
	Restaurant model.Restaurant
	DistanceKm float64
}

// NearbyResult is the base point used and the ranked restaurants.
type NearbyResult struct {
	Base        geo.Point
	RadiusKm    float64
	Restaurants []NearbyRestaurant
}

// AreaCentroid is the spherical mean of every restaurant whose area
// contains area, case-insensitively.
func (e *Engine) AreaCentroid(ctx context.Context, area string) (geo.Point, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return geo.Point{}, wrap(ErrMissingParams, "area")
	}
	rs, err := e.store.RestaurantsInArea(ctx, area, 0)
	if err != nil {
		return geo.Point{}, fmt.Errorf("restaurants in area: %w", err)
	}
	if len(rs) == 0 {
		return geo.Point{}, wrap(ErrNoMatch, "no restaurants found in area %q", area)
	}
	pts := make([]geo.Point, len(rs))
	for i, r := range rs {
		pts[i] = geo.Point{Lat: r.Latitude, Lon: r.Longitude}
	}
	return geo.Centroid(pts)
}

// Nearby ranks restaurants within RadiusKm of the base point by great
// circle distance and returns at most NearbyLimit of them.  When the
// base is a restaurant, that restaurant is left out.
func (e *Engine) Nearby(ctx context.Context, req NearbyRequest) (NearbyResult, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = e.cfg.DefaultRadiusKm
	}

	var (
		base    geo.Point
		exclude uint64
	)
	switch {
	case req.RestaurantID != 0:
		r, err := e.store.GetRestaurant(ctx, req.RestaurantID)
		if err != nil {
			return NearbyResult{}, notFound(err, fmt.Sprintf("restaurant %d", req.RestaurantID))
		}
		base = geo.Point{Lat: r.Latitude, Lon: r.Longitude}
		exclude = r.ID
	case strings.TrimSpace(req.Area) != "":
		c, err := e.AreaCentroid(ctx, req.Area)
		if err != nil {
			return NearbyResult{}, err
		}
		base = c
	default:
		return NearbyResult{}, wrap(ErrMissingParams, "provide area or restaurant_id")
	}

	candidates, err := e.store.RestaurantsInBox(ctx, geo.BoundingBox(base, radius))
	if err != nil {
		return NearbyResult{}, fmt.Errorf("restaurants in box: %w", err)
	}
	ranked := make([]NearbyRestaurant, 0, len(candidates))
	for _, r := range candidates {
		if r.ID == exclude {
			continue
		}
		d := geo.Haversine(base, geo.Point{Lat: r.Latitude, Lon: r.Longitude})
		if d > radius {
			continue
		}
		ranked = append(ranked, NearbyRestaurant{Restaurant: r, DistanceKm: d})
	}
	if len(ranked) == 0 {
		return NearbyResult{}, wrap(ErrNoMatch, "no restaurants within %.1f km", radius)
	}
	slices.SortStableFunc(ranked, func(a, b NearbyRestaurant) int {
		return cmp.Or(cmp.Compare(a.DistanceKm, b.DistanceKm), cmp.Compare(a.Restaurant.ID, b.Restaurant.ID))
	})
	if len(ranked) > e.cfg.NearbyLimit {
		ranked = ranked[:e.cfg.NearbyLimit]
	}
	return NearbyResult{Base: base, RadiusKm: radius, Restaurants: ranked}, nil
}
