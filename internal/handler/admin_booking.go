package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-assistant/internal/middleware"
    "github.com/iliyamo/restaurant-assistant/internal/repository"
    "github.com/iliyamo/restaurant-assistant/internal/service"
)

// AdminBookingHandler serves the staff back office.  Routes are mounted
// behind JWTAuth and RequireRole, so no ownership checks happen here.
type AdminBookingHandler struct {
    Ledger *service.Ledger
}

// NewAdminBookingHandler constructs an AdminBookingHandler and panics on a
// nil ledger.
func NewAdminBookingHandler(l *service.Ledger) *AdminBookingHandler {
    if l == nil {
        panic("nil ledger passed to NewAdminBookingHandler")
    }
    return &AdminBookingHandler{Ledger: l}
}

// List handles GET /v1/admin/bookings?date=.  Without a date the most
// recent bookings are returned.
func (h *AdminBookingHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    bs, err := h.Ledger.GetAllBookings(ctx, c.QueryParam("date"))
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toViews(bs), "count": len(bs)})
}

// Get handles GET /v1/admin/bookings/:id.
func (h *AdminBookingHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return bookingError(c, repository.ErrBookingNotFound)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Ledger.GetBooking(ctx, id)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, toView(*b))
}

// Cancel handles POST /v1/admin/bookings/:id/cancel.
func (h *AdminBookingHandler) Cancel(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return bookingError(c, repository.ErrBookingNotFound)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.Ledger.CancelBooking(ctx, id)
    if err != nil {
        return bookingError(c, err)
    }
    if !res.AlreadyCancelled {
        staff, _ := middleware.StaffID(c)
        log.Printf("admin: staff %d cancelled booking %d", staff, id)
    }
    return c.JSON(http.StatusOK, res)
}
