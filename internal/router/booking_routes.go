package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-assistant/internal/handler"
)

// RegisterBookings registers the guest reservation endpoints under /v1.
// They are public; limiter throttles them per visitor.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", limiter)

	g.POST("/bookings", h.Create)
	g.GET("/bookings", h.ListByEmail)        // ?email=
	g.GET("/bookings/:id", h.Get)            // ?email= must match
	g.GET("/bookings/:id/qr", h.QRCode)      // PNG, ?email= must match
	g.POST("/bookings/:id/cancel", h.Cancel) // body email must match

	g.GET("/availability", h.Availability)
	g.GET("/availability/:date/slots", h.Slots)
}
