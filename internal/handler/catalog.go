package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/table-reservation/internal/reservation"
)

// CatalogHandler serves read-only restaurant data and feedback listings.
type CatalogHandler struct {
    Engine *reservation.Engine
}

// NewCatalogHandler wires a handler to the engine.
func NewCatalogHandler(engine *reservation.Engine) *CatalogHandler {
    if engine == nil {
        panic("nil engine passed to NewCatalogHandler")
    }
    return &CatalogHandler{Engine: engine}
}

// GetRestaurant handles GET /v1/restaurants/:id.
func (h *CatalogHandler) GetRestaurant(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, "invalid restaurant id")
    }
    r, err := h.Engine.Restaurant(c.Request().Context(), id)
    if err != nil {
        return engineError(c, err)
    }
    return ok(c, http.StatusOK, toRestaurant(r))
}

// ListRestaurants handles GET /v1/restaurants?name=&area=&limit=.  Name
// takes precedence; one of the two is required.
func (h *CatalogHandler) ListRestaurants(c echo.Context) error {
    limit := 0
    if v := c.QueryParam("limit"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n <= 0 {
            return badRequest(c, "limit must be a positive integer")
        }
        limit = n
    }
    ctx := c.Request().Context()
    name, area := c.QueryParam("name"), c.QueryParam("area")
    switch {
    case name != "":
        rs, err := h.Engine.SearchRestaurants(ctx, name, limit)
        if err != nil {
            return engineError(c, err)
        }
        return ok(c, http.StatusOK, toRestaurants(rs))
    case area != "":
        rs, err := h.Engine.RestaurantsInArea(ctx, area, limit)
        if err != nil {
            return engineError(c, err)
        }
        return ok(c, http.StatusOK, toRestaurants(rs))
    }
    return fail(c, http.StatusBadRequest, "missing_params", "name or area is required")
}

// AreaCentroid handles GET /v1/areas/:area/centroid.
func (h *CatalogHandler) AreaCentroid(c echo.Context) error {
    p, err := h.Engine.AreaCentroid(c.Request().Context(), c.Param("area"))
    if err != nil {
        return engineError(c, err)
    }
    return ok(c, http.StatusOK, toPoint(p))
}

// RestaurantFeedback handles GET /v1/restaurants/:id/feedback.
func (h *CatalogHandler) RestaurantFeedback(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, "invalid restaurant id")
    }
    fs, err := h.Engine.LatestRestaurantFeedback(c.Request().Context(), id)
    if err != nil {
        return engineError(c, err)
    }
    return ok(c, http.StatusOK, toFeedbacks(fs))
}

// UserFeedback handles GET /v1/users/:id/feedback.
func (h *CatalogHandler) UserFeedback(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, "invalid user id")
    }
    fs, err := h.Engine.LatestUserFeedback(c.Request().Context(), id)
    if err != nil {
        return engineError(c, err)
    }
    return ok(c, http.StatusOK, toFeedbacks(fs))
}

// Amenities handles GET /v1/amenities.
func (h *CatalogHandler) Amenities(c echo.Context) error {
    return ok(c, http.StatusOK, reservation.Amenities())
}

// Cuisines handles GET /v1/cuisines.
func (h *CatalogHandler) Cuisines(c echo.Context) error {
    return ok(c, http.StatusOK, reservation.Cuisines())
}
