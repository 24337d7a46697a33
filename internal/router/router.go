// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/table-reservation/internal/handler"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// the liveness probe and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the catalog reads whose answers only change
// when the dataset is reseeded, which makes them safe to cache.  mw is
// applied to every route in the group.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, r *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/restaurants", h.ListRestaurants)
	g.GET("/restaurants/:id", h.GetRestaurant)
	g.GET("/areas/:area/centroid", h.AreaCentroid)
	g.GET("/amenities", h.Amenities)
	g.GET("/cuisines", h.Cuisines)
	// nearby depends only on static coordinates, so it is cacheable too
	g.GET("/restaurants/nearby", r.Nearby)
}
