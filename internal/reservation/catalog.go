package reservation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
)

var (
	amenities = []string{"WiFi", "Parking", "AC", "Outdoor Seating", "Rooftop", "Live Music", "Valet", "Pet Friendly", "vegetarian options"}
	cuisines  = []string{"Italian", "Indian", "Chinese", "Mexican", "Continental", "South Indian"}
)

// Amenities is the canonical amenity vocabulary.
func Amenities() []string { return slices.Clone(amenities) }

// Cuisines is the canonical cuisine vocabulary.
func Cuisines() []string { return slices.Clone(cuisines) }

// Restaurant returns one restaurant's details.
func (e *Engine) Restaurant(ctx context.Context, id uint64) (model.Restaurant, error) {
	r, err := e.store.GetRestaurant(ctx, id)
	if err != nil {
		return model.Restaurant{}, notFound(err, fmt.Sprintf("restaurant %d", id))
	}
	return r, nil
}

// SearchRestaurants matches name as a case-insensitive substring.  A
// non-positive limit means SearchLimit.
func (e *Engine) SearchRestaurants(ctx context.Context, name string, limit int) ([]model.Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, wrap(ErrMissingParams, "name")
	}
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	rs, err := e.store.RestaurantsByName(ctx, name, limit)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	if len(rs) == 0 {
		return nil, wrap(ErrNoMatch, "no restaurants named like %q", name)
	}
	return rs, nil
}

// RestaurantsInArea lists restaurants whose area contains area.  A
// non-positive limit means AreaLimit.
func (e *Engine) RestaurantsInArea(ctx context.Context, area string, limit int) ([]model.Restaurant, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return nil, wrap(ErrMissingParams, "area")
	}
	if limit <= 0 {
		limit = e.cfg.AreaLimit
	}
	rs, err := e.store.RestaurantsInArea(ctx, area, limit)
	if err != nil {
		return nil, fmt.Errorf("restaurants in area: %w", err)
	}
	if len(rs) == 0 {
		return nil, wrap(ErrNoMatch, "no restaurants found in area %q", area)
	}
	return rs, nil
}

// LatestUserFeedback returns the user's most recent feedback, newest first.
func (e *Engine) LatestUserFeedback(ctx context.Context, userID uint64) ([]model.Feedback, error) {
	fs, err := e.store.LatestFeedbackByUser(ctx, userID, e.cfg.FeedbackLimit)
	if err != nil {
		return nil, fmt.Errorf("user feedback: %w", err)
	}
	return fs, nil
}

// LatestRestaurantFeedback returns a restaurant's most recent feedback,
// newest first.
func (e *Engine) LatestRestaurantFeedback(ctx context.Context, restaurantID uint64) ([]model.Feedback, error) {
	if _, err := e.Restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	fs, err := e.store.LatestFeedbackByRestaurant(ctx, restaurantID, e.cfg.FeedbackLimit)
	if err != nil {
		return nil, fmt.Errorf("restaurant feedback: %w", err)
	}
	return fs, nil
}
