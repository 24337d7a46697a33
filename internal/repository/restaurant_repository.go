package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/table-reservation/internal/geo"
	"github.com/iliyamo/table-reservation/internal/model"
)

const restaurantColumns = `id, name, area, latitude, longitude, cuisines, amenities, rating, created_at`

// GetRestaurant loads a single restaurant by id.
func (s sqlQueries) GetRestaurant(ctx context.Context, id uint64) (model.Restaurant, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	r, err := scanRestaurant(row)
	if err != nil {
		return model.Restaurant{}, mapNoRows(err)
	}
	return r, nil
}

// RestaurantsByName searches names with a case-insensitive LIKE.
func (s sqlQueries) RestaurantsByName(ctx context.Context, name string, limit int) ([]model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE LOWER(name) LIKE ? ESCAPE '!' ORDER BY id`
	args := []any{likePattern(name)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.listRestaurants(ctx, q, args...)
}

// RestaurantsInArea searches area labels with a case-insensitive LIKE.
func (s sqlQueries) RestaurantsInArea(ctx context.Context, area string, limit int) ([]model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE LOWER(area) LIKE ? ESCAPE '!' ORDER BY id`
	args := []any{likePattern(area)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.listRestaurants(ctx, q, args...)
}

// RestaurantsInBox is the bounding-box prefilter for nearby searches.
// The latitude/longitude index keeps it from scanning every row.
func (s sqlQueries) RestaurantsInBox(ctx context.Context, box geo.Box) ([]model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE latitude BETWEEN ? AND ?`
	args := []any{box.MinLat, box.MaxLat}
	if !box.LonOpen {
		q += ` AND longitude BETWEEN ? AND ?`
		args = append(args, box.MinLon, box.MaxLon)
	}
	q += ` ORDER BY id`
	return s.listRestaurants(ctx, q, args...)
}

func (s sqlQueries) listRestaurants(ctx context.Context, q string, args ...any) ([]model.Restaurant, error) {
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(sc scanner) (model.Restaurant, error) {
	var r model.Restaurant
	var cuisines, amenities sql.NullString
	var rating sql.NullFloat64
	if err := sc.Scan(&r.ID, &r.Name, &r.Area, &r.Latitude, &r.Longitude,
		&cuisines, &amenities, &rating, &r.CreatedAt); err != nil {
		return model.Restaurant{}, err
	}
	r.Cuisines = cuisines.String
	r.Amenities = amenities.String
	r.Rating = rating.Float64
	return r, nil
}
