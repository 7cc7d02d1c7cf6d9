package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Health is a simple liveness endpoint used by load balancers.  It returns
// a plain text "ok" with HTTP 200 as long as the process serves requests.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// ReadyHandler reports whether the backing stores answer.  Redis is
// optional; a nil client is reported as "disabled" and does not fail the
// check.
type ReadyHandler struct {
    DB    *sql.DB
    Redis *redis.Client
}

// Ready handles GET /readyz.  It answers 503 when MySQL or a configured
// Redis does not respond within two seconds.
func (h *ReadyHandler) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()

    status := http.StatusOK
    checks := echo.Map{}
    if h.DB == nil {
        checks["mysql"] = "missing"
        status = http.StatusServiceUnavailable
    } else if err := h.DB.PingContext(ctx); err != nil {
        checks["mysql"] = err.Error()
        status = http.StatusServiceUnavailable
    } else {
        checks["mysql"] = "ok"
    }
    if h.Redis == nil {
        checks["redis"] = "disabled"
    } else if err := h.Redis.Ping(ctx).Err(); err != nil {
        checks["redis"] = err.Error()
        status = http.StatusServiceUnavailable
    } else {
        checks["redis"] = "ok"
    }
    return c.JSON(status, checks)
}
