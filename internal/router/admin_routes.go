package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-assistant/internal/handler"
	"github.com/iliyamo/restaurant-assistant/internal/middleware"
	"github.com/iliyamo/restaurant-assistant/internal/model"
)

// RegisterAdmin registers the back-office routes under /v1/admin.  All of
// them require a valid JWT; staff creation additionally requires MANAGER.
func RegisterAdmin(e *echo.Echo, h *handler.AdminBookingHandler, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleManager),
	)
	g.GET("/bookings", h.List) // ?date=YYYY-MM-DD, latest 100 without
	g.GET("/bookings/:id", h.Get)
	g.POST("/bookings/:id/cancel", h.Cancel)

	g.POST("/staff", a.CreateStaff, middleware.RequireRole(model.RoleManager))
}
