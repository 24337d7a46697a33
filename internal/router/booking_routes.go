package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
)

// RegisterBookings registers availability checks, the booking lifecycle
// and the feedback listings under /v1.  These responses change with
// every booking and are never cached.
func RegisterBookings(e *echo.Echo, h *handler.ReservationHandler, c *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/restaurants/:id/availability", h.CheckAvailability)
	g.POST("/bookings", h.CreateBooking)
	g.DELETE("/bookings/:id", h.CancelBooking)
	g.POST("/bookings/:id/feedback", h.SubmitFeedback)
	g.GET("/restaurants/:id/feedback", c.RestaurantFeedback)
	g.GET("/users/:id/feedback", c.UserFeedback)
}
