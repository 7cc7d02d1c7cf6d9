package handler

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/jinzhu/copier"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-assistant/internal/model"
    "github.com/iliyamo/restaurant-assistant/internal/repository"
    "github.com/iliyamo/restaurant-assistant/internal/service"
    "github.com/iliyamo/restaurant-assistant/internal/utils"
)

// qrSize is the edge length in pixels of booking QR codes.
const qrSize = 256

// BookingHandler serves the guest-facing reservation endpoints.  Guests are
// not authenticated; the email a booking was made with acts as the proof of
// ownership for reads and cancellations.
type BookingHandler struct {
    Ledger *service.Ledger
}

// NewBookingHandler constructs a BookingHandler and panics on a nil ledger.
func NewBookingHandler(l *service.Ledger) *BookingHandler {
    if l == nil {
        panic("nil ledger passed to NewBookingHandler")
    }
    return &BookingHandler{Ledger: l}
}

// createBookingReq is the body of POST /v1/bookings.  Field semantics are
// checked by the ledger; the tags only bound sizes.
type createBookingReq struct {
    CustomerName    string `json:"customer_name" validate:"max=100"`
    Email           string `json:"email" validate:"max=254"`
    Phone           string `json:"phone" validate:"max=32"`
    Date            string `json:"date" validate:"max=10"`
    Time            string `json:"time" validate:"max=8"`
    PartySize       int    `json:"party_size"`
    SpecialRequests string `json:"special_requests" validate:"max=500"`
}

type emailReq struct {
    Email string `json:"email" validate:"required,email,max=254"`
}

// bookingView is the JSON shape of a booking returned to clients.
type bookingView struct {
    ID              uint64              `json:"booking_id"`
    CustomerName    string              `json:"customer_name"`
    Email           string              `json:"email"`
    Phone           string              `json:"phone"`
    Date            string              `json:"date"`
    Time            string              `json:"time"`
    PartySize       int                 `json:"party_size"`
    SpecialRequests string              `json:"special_requests,omitempty"`
    Status          model.BookingStatus `json:"status"`
    CreatedAt       time.Time           `json:"created_at"`
}

func toView(b model.Booking) bookingView {
    var v bookingView
    _ = copier.Copy(&v, &b)
    return v
}

func toViews(bs []model.Booking) []bookingView {
    out := make([]bookingView, 0, len(bs))
    for _, b := range bs {
        out = append(out, toView(b))
    }
    return out
}

// Create handles POST /v1/bookings.  201 with the confirmation on success,
// 400 for invalid input and 409 when the slot is full.
func (h *BookingHandler) Create(c echo.Context) error {
    var req createBookingReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    var in service.BookingRequest
    _ = copier.Copy(&in, &req)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.Ledger.CreateBooking(ctx, in)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/bookings/:id?email=.  A booking is only shown when
// the email matches; otherwise the response is the same 404 as for an
// unknown id.
func (h *BookingHandler) Get(c echo.Context) error {
    b, err := h.owned(c, c.QueryParam("email"))
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, toView(*b))
}

// QRCode handles GET /v1/bookings/:id/qr?email= and returns a PNG.
func (h *BookingHandler) QRCode(c echo.Context) error {
    b, err := h.owned(c, c.QueryParam("email"))
    if err != nil {
        return bookingError(c, err)
    }
    png, err := utils.BookingQRCode(utils.BookingQRContent(b.ID), qrSize)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr generation failed"})
    }
    return c.Blob(http.StatusOK, "image/png", png)
}

// Cancel handles POST /v1/bookings/:id/cancel with body {"email": ...}.
// Repeating the call reports already_cancelled=true.
func (h *BookingHandler) Cancel(c echo.Context) error {
    var req emailReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    b, err := h.owned(c, req.Email)
    if err != nil {
        return bookingError(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.Ledger.CancelBooking(ctx, b.ID)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// ListByEmail handles GET /v1/bookings?email=.
func (h *BookingHandler) ListByEmail(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    bs, err := h.Ledger.GetBookingsByEmail(ctx, c.QueryParam("email"))
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toViews(bs)})
}

// Availability handles GET /v1/availability?date=&time=&party_size=.
func (h *BookingHandler) Availability(c echo.Context) error {
    date := strings.TrimSpace(c.QueryParam("date"))
    slot := strings.TrimSpace(c.QueryParam("time"))
    size, err := strconv.Atoi(c.QueryParam("party_size"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be a number"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ok, err := h.Ledger.CheckAvailability(ctx, date, slot, size)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":       date,
        "time":       slot,
        "party_size": size,
        "available":  ok,
    })
}

// Slots handles GET /v1/availability/:date/slots.
func (h *BookingHandler) Slots(c echo.Context) error {
    date := c.Param("date")

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    slots, err := h.Ledger.GetAvailableSlots(ctx, date)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"date": date, "slots": slots})
}

// owned loads the booking in the :id path parameter and checks that it was
// made with email.  Mismatches surface as ErrBookingNotFound.
func (h *BookingHandler) owned(c echo.Context, email string) (*model.Booking, error) {
    id, ok := parseID(c, "id")
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    email = strings.ToLower(strings.TrimSpace(email))
    if email == "" {
        return nil, fmt.Errorf("%w: Email is required.", service.ErrInvalidBooking)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Ledger.GetBooking(ctx, id)
    if err != nil {
        return nil, err
    }
    if b.Email != email {
        return nil, repository.ErrBookingNotFound
    }
    return b, nil
}
