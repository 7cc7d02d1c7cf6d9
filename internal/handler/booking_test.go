package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-assistant/internal/config"
	"github.com/iliyamo/restaurant-assistant/internal/model"
	"github.com/iliyamo/restaurant-assistant/internal/repository"
	"github.com/iliyamo/restaurant-assistant/internal/service"
)

// bookingStore keeps bookings in memory for handler tests.
type bookingStore struct {
	mu   sync.Mutex
	rows []model.Booking
}

func (s *bookingStore) occupied(date, slot string) int {
	n := 0
	for _, b := range s.rows {
		if b.Date == date && b.Time == slot && b.Status == model.BookingConfirmed {
			n += b.PartySize
		}
	}
	return n
}

func (s *bookingStore) CreateIfAvailable(_ context.Context, b *model.Booking, _, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupied(b.Date, b.Time)+b.PartySize > capacity {
		return repository.ErrSlotFull
	}
	b.ID = uint64(len(s.rows) + 1)
	b.Status = model.BookingConfirmed
	b.CreatedAt = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	s.rows = append(s.rows, *b)
	return nil
}

func (s *bookingStore) Occupancy(_ context.Context, date, slot string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupied(date, slot), nil
}

func (s *bookingStore) OccupancyByDate(_ context.Context, date string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, b := range s.rows {
		if b.Date == date && b.Status == model.BookingConfirmed {
			out[b.Time] += b.PartySize
		}
	}
	return out, nil
}

func (s *bookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || id > uint64(len(s.rows)) {
		return nil, repository.ErrBookingNotFound
	}
	b := s.rows[id-1]
	return &b, nil
}

func (s *bookingStore) ListByEmail(_ context.Context, email string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.rows {
		if b.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *bookingStore) ListByDate(_ context.Context, date string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.rows {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *bookingStore) ListRecent(_ context.Context, limit int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.Booking{}, s.rows...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *bookingStore) Cancel(_ context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || id > uint64(len(s.rows)) {
		return false, repository.ErrBookingNotFound
	}
	if s.rows[id-1].Status == model.BookingCancelled {
		return true, nil
	}
	s.rows[id-1].Status = model.BookingCancelled
	return false, nil
}

func newBookingHandler(t *testing.T, capacity int) (*echo.Echo, *BookingHandler) {
	t.Helper()
	l, err := service.NewLedger(&bookingStore{}, nil, config.LedgerConfig{
		Capacity:     capacity,
		MinPartySize: 1,
		MaxPartySize: 12,
		Slots:        config.DefaultSlots,
	})
	require.NoError(t, err)
	e := echo.New()
	e.Validator = NewValidator()
	return e, NewBookingHandler(l)
}

// call runs h against a request built from method, target and body.  Path
// parameters are given as name/value pairs.
func call(e *echo.Echo, h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	_ = h(c)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

const guestBooking = `{"customer_name":"Ana Ruiz","email":"Ana@Example.com","phone":"555-0101",
"date":"2030-05-01","time":"7:00 PM","party_size":4}`

func TestCreateBooking(t *testing.T) {
	e, h := newBookingHandler(t, 100)

	rec := call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["booking_id"])
	assert.Equal(t, "Booking confirmed! Your reservation ID is 1.", body["message"])
}

func TestCreateBookingRejectsInvalidInput(t *testing.T) {
	e, h := newBookingHandler(t, 100)

	rec := call(e, h.Create, http.MethodPost, "/v1/bookings",
		strings.Replace(guestBooking, `"party_size":4`, `"party_size":13`, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Party size must be between 1 and 12 guests.", decode(t, rec)["error"])

	rec = call(e, h.Create, http.MethodPost, "/v1/bookings",
		strings.Replace(guestBooking, "7:00 PM", "7:15 PM", 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, h.Create, http.MethodPost, "/v1/bookings", `{"party_size":"four"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body", decode(t, rec)["error"])
}

func TestCreateBookingSlotFull(t *testing.T) {
	e, h := newBookingHandler(t, 5)

	require.Equal(t, http.StatusCreated, call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)
	rec := call(e, h.Create, http.MethodPost, "/v1/bookings",
		strings.Replace(guestBooking, `"party_size":4`, `"party_size":2`, 1))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, service.MsgSlotFull, decode(t, rec)["error"])
}

func TestGetBookingRequiresMatchingEmail(t *testing.T) {
	e, h := newBookingHandler(t, 100)
	require.Equal(t, http.StatusCreated, call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)

	rec := call(e, h.Get, http.MethodGet, "/v1/bookings/1?email=ANA@example.com", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ana@example.com", body["email"])
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, "7:00 PM", body["time"])

	rec = call(e, h.Get, http.MethodGet, "/v1/bookings/1?email=someone@example.com", "", "id", "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.MsgBookingNotFound, decode(t, rec)["error"])

	rec = call(e, h.Get, http.MethodGet, "/v1/bookings/1", "", "id", "1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, h.Get, http.MethodGet, "/v1/bookings/9?email=ana@example.com", "", "id", "9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelBookingTwice(t *testing.T) {
	e, h := newBookingHandler(t, 100)
	require.Equal(t, http.StatusCreated, call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)

	rec := call(e, h.Cancel, http.MethodPost, "/v1/bookings/1/cancel", `{"email":"ana@example.com"}`, "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["already_cancelled"])
	assert.Equal(t, "Booking 1 has been cancelled.", body["message"])

	rec = call(e, h.Cancel, http.MethodPost, "/v1/bookings/1/cancel", `{"email":"ana@example.com"}`, "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["already_cancelled"])

	rec = call(e, h.Cancel, http.MethodPost, "/v1/bookings/1/cancel", `{"email":"not-an-email"}`, "id", "1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelFreesSeats(t *testing.T) {
	e, h := newBookingHandler(t, 4)
	require.Equal(t, http.StatusCreated, call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)

	rec := call(e, h.Availability, http.MethodGet, "/v1/availability?date=2030-05-01&time=7:00%20PM&party_size=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])

	require.Equal(t, http.StatusOK,
		call(e, h.Cancel, http.MethodPost, "/v1/bookings/1/cancel", `{"email":"ana@example.com"}`, "id", "1").Code)

	rec = call(e, h.Availability, http.MethodGet, "/v1/availability?date=2030-05-01&time=7:00%20PM&party_size=4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["available"])
}

func TestAvailabilityRejectsBadPartySize(t *testing.T) {
	e, h := newBookingHandler(t, 100)
	rec := call(e, h.Availability, http.MethodGet, "/v1/availability?date=2030-05-01&time=7:00%20PM&party_size=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlotsListsRemainingSeats(t *testing.T) {
	e, h := newBookingHandler(t, 4)
	require.Equal(t, http.StatusCreated, call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)

	rec := call(e, h.Slots, http.MethodGet, "/v1/availability/2030-05-01/slots", "", "date", "2030-05-01")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Slots []model.SlotAvailability `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Slots, len(config.DefaultSlots)-1)
	for _, s := range body.Slots {
		assert.NotEqual(t, "7:00 PM", s.Time)
		assert.Equal(t, 4, s.AvailableSeats)
	}

	rec = call(e, h.Slots, http.MethodGet, "/v1/availability/05-01-2030/slots", "", "date", "05-01-2030")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByEmailAndQRCode(t *testing.T) {
	e, h := newBookingHandler(t, 100)
	require.Equal(t, http.StatusCreated, call(e, h.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)

	rec := call(e, h.ListByEmail, http.MethodGet, "/v1/bookings?email=ana@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := decode(t, rec)["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)

	rec = call(e, h.ListByEmail, http.MethodGet, "/v1/bookings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, h.QRCode, http.MethodGet, "/v1/bookings/1/qr?email=ana@example.com", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestAdminBookingHandler(t *testing.T) {
	e, guest := newBookingHandler(t, 100)
	require.Equal(t, http.StatusCreated, call(e, guest.Create, http.MethodPost, "/v1/bookings", guestBooking).Code)
	h := NewAdminBookingHandler(guest.Ledger)

	rec := call(e, h.List, http.MethodGet, "/v1/admin/bookings?date=2030-05-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = call(e, h.List, http.MethodGet, "/v1/admin/bookings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = call(e, h.Get, http.MethodGet, "/v1/admin/bookings/1", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana Ruiz", decode(t, rec)["customer_name"])

	rec = call(e, h.Get, http.MethodGet, "/v1/admin/bookings/abc", "", "id", "abc")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, h.Cancel, http.MethodPost, "/v1/admin/bookings/1/cancel", "", "id", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["already_cancelled"])

	rec = call(e, h.Cancel, http.MethodPost, "/v1/admin/bookings/7/cancel", "", "id", "7")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingErrorMapping(t *testing.T) {
	e := echo.New()
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrInvalidBooking, http.StatusBadRequest},
		{repository.ErrSlotFull, http.StatusConflict},
		{repository.ErrBookingNotFound, http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, bookingError(c, tc.err))
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestValidationMessage(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&createStaffReq{Email: "nope", Password: "short", Role: "OWNER"})
	require.Error(t, err)
	msg := validationMessage(err)
	assert.Contains(t, msg, "email: must be a valid email")
	assert.Contains(t, msg, "password: must be at least 8")
	assert.Contains(t, msg, "role: must be one of STAFF MANAGER")

	assert.Equal(t, "invalid request", validationMessage(errors.New("x")))
}
