// Package handler exposes the HTTP handlers of the restaurant API: guest
// bookings, the menu browser, the assistant chat, voice I/O and the staff
// back office.
package handler

import (
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-assistant/internal/repository"
    "github.com/iliyamo/restaurant-assistant/internal/service"
)

// CustomValidator plugs go-playground/validator into echo so handlers can
// call c.Validate on bound request bodies.
type CustomValidator struct {
    v *validator.Validate
}

// NewValidator returns a validator suitable for echo.Echo.Validator.
func NewValidator() *CustomValidator {
    return &CustomValidator{v: validator.New()}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
    return cv.v.Struct(i)
}

// bindAndValidate decodes the body into req and runs its validate tags.
// On failure it writes the 400 response itself and returns ok=false.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
    if err := c.Bind(req); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(req); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
    }
    return true, nil
}

// validationMessage turns validator errors into one readable line such as
// "email: must be a valid email".
func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return "invalid request"
    }
    parts := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        field := strings.ToLower(fe.Field())
        switch fe.Tag() {
        case "required":
            parts = append(parts, field+": is required")
        case "email":
            parts = append(parts, field+": must be a valid email")
        case "max":
            parts = append(parts, fmt.Sprintf("%s: must be at most %s characters", field, fe.Param()))
        case "min", "gte":
            parts = append(parts, fmt.Sprintf("%s: must be at least %s", field, fe.Param()))
        case "oneof":
            parts = append(parts, fmt.Sprintf("%s: must be one of %s", field, fe.Param()))
        default:
            parts = append(parts, field+": is invalid")
        }
    }
    return strings.Join(parts, "; ")
}

// bookingError maps ledger and repository errors onto HTTP statuses.
func bookingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrInvalidBooking):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": service.Message(err)})
    case errors.Is(err, repository.ErrSlotFull):
        return c.JSON(http.StatusConflict, echo.Map{"error": service.MsgSlotFull})
    case errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": service.MsgBookingNotFound})
    default:
        log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}
