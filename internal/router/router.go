package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-assistant/internal/handler"
	"github.com/iliyamo/restaurant-assistant/internal/middleware"
	"github.com/iliyamo/restaurant-assistant/internal/model"
)

// RegisterRoutes registers the unauthenticated probe endpoints: /healthz for
// liveness and /readyz for MySQL and Redis reachability.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready.Ready)
	}
}

// RegisterAuth registers staff authentication routes.  Login, refresh and
// logout live under /v1/auth without a JWT; /v1/auth/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	// body refresh_token revokes one session; a bearer alone revokes all
	g.POST("/logout", a.Logout)

	g.GET("/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleManager),
	)
}
