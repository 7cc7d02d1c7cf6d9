package service

import (
    "context"
    "fmt"
    "log"
    "net/mail"
    "strings"
    "time"

    "github.com/iliyamo/restaurant-assistant/internal/config"
    "github.com/iliyamo/restaurant-assistant/internal/model"
    "github.com/iliyamo/restaurant-assistant/internal/queue"
)

// recentLimit caps GetAllBookings when no date is given.
const recentLimit = 100

// BookingStore is the persistence the ledger needs.  CreateIfAvailable must
// perform the occupancy check and the insert atomically per (date, time);
// repository.BookingRepo does so with a locked slot row.
type BookingStore interface {
    CreateIfAvailable(ctx context.Context, b *model.Booking, slotMinutes, capacity int) error
    Occupancy(ctx context.Context, date, slot string) (int, error)
    OccupancyByDate(ctx context.Context, date string) (map[string]int, error)
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    ListByEmail(ctx context.Context, email string) ([]model.Booking, error)
    ListByDate(ctx context.Context, date string) ([]model.Booking, error)
    ListRecent(ctx context.Context, limit int) ([]model.Booking, error)
    Cancel(ctx context.Context, id uint64) (alreadyCancelled bool, err error)
}

// EventPublisher receives booking events after the database write has
// committed.  AMQPPublisher implements it.
type EventPublisher interface {
    PublishBooking(ctx context.Context, ev queue.BookingEvent) error
}

// BookingRequest carries the fields of a new reservation.
type BookingRequest struct {
    CustomerName    string
    Email           string
    Phone           string
    Date            string
    Time            string
    PartySize       int
    SpecialRequests string
}

// BookingResult is returned by CreateBooking on success.
type BookingResult struct {
    ID      uint64 `json:"booking_id"`
    Message string `json:"message"`
}

// CancelResult is returned by CancelBooking on success.
type CancelResult struct {
    ID               uint64 `json:"booking_id"`
    AlreadyCancelled bool   `json:"already_cancelled"`
    Message          string `json:"message"`
}

// Ledger owns admission control for table reservations.  It is safe for
// concurrent use; serialization per slot is delegated to the store.
type Ledger struct {
    store  BookingStore
    events EventPublisher
    cfg    config.LedgerConfig
    slots  map[string]int // slot label -> minutes after midnight
    now    func() time.Time
}

// NewLedger builds a ledger over store.  events may be nil.  Slots that do
// not parse as "3:04 PM" are an error.
func NewLedger(store BookingStore, events EventPublisher, cfg config.LedgerConfig) (*Ledger, error) {
    slots := make(map[string]int, len(cfg.Slots))
    for _, s := range cfg.Slots {
        m, err := model.SlotMinutes(s)
        if err != nil {
            return nil, fmt.Errorf("slot %q: %w", s, err)
        }
        slots[s] = m
    }
    return &Ledger{store: store, events: events, cfg: cfg, slots: slots, now: time.Now}, nil
}

// Config returns the ledger's configuration.
func (l *Ledger) Config() config.LedgerConfig { return l.cfg }

// CreateBooking validates req and admits it when the slot has room.
// Errors: ErrInvalidBooking (wrapped with a message), repository.ErrSlotFull,
// or a storage error.
func (l *Ledger) CreateBooking(ctx context.Context, req BookingRequest) (BookingResult, error) {
    b := model.Booking{
        CustomerName:    strings.TrimSpace(req.CustomerName),
        Email:           normalizeEmail(req.Email),
        Phone:           strings.TrimSpace(req.Phone),
        Date:            strings.TrimSpace(req.Date),
        Time:            strings.TrimSpace(req.Time),
        PartySize:       req.PartySize,
        SpecialRequests: strings.TrimSpace(req.SpecialRequests),
    }
    if err := l.validate(&b); err != nil {
        return BookingResult{}, err
    }
    if err := l.store.CreateIfAvailable(ctx, &b, l.slots[b.Time], l.cfg.Capacity); err != nil {
        return BookingResult{}, err
    }
    l.publish(ctx, queue.EventBookingConfirmed, &b)
    return BookingResult{
        ID:      b.ID,
        Message: fmt.Sprintf("Booking confirmed! Your reservation ID is %d.", b.ID),
    }, nil
}

// CheckAvailability reports whether a party of partySize still fits into
// (date, slot).  Invalid input is an ErrInvalidBooking error.
func (l *Ledger) CheckAvailability(ctx context.Context, date, slot string, partySize int) (bool, error) {
    if err := l.checkPartySize(partySize); err != nil {
        return false, err
    }
    if err := l.checkDate(date); err != nil {
        return false, err
    }
    if err := l.checkSlot(slot); err != nil {
        return false, err
    }
    occupied, err := l.store.Occupancy(ctx, date, slot)
    if err != nil {
        return false, err
    }
    return occupied+partySize <= l.cfg.Capacity, nil
}

// GetAvailableSlots lists every configured slot of date that still has
// seats, in configured order.
func (l *Ledger) GetAvailableSlots(ctx context.Context, date string) ([]model.SlotAvailability, error) {
    if err := l.checkDate(date); err != nil {
        return nil, err
    }
    occupied, err := l.store.OccupancyByDate(ctx, date)
    if err != nil {
        return nil, err
    }
    out := make([]model.SlotAvailability, 0, len(l.cfg.Slots))
    for _, s := range l.cfg.Slots {
        if remaining := l.cfg.Capacity - occupied[s]; remaining > 0 {
            out = append(out, model.SlotAvailability{Time: s, AvailableSeats: remaining})
        }
    }
    return out, nil
}

// GetBooking returns the booking with id or repository.ErrBookingNotFound.
func (l *Ledger) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
    return l.store.GetByID(ctx, id)
}

// GetBookingsByEmail lists a guest's bookings, latest date and slot first.
func (l *Ledger) GetBookingsByEmail(ctx context.Context, email string) ([]model.Booking, error) {
    email = normalizeEmail(email)
    if email == "" {
        return nil, fmt.Errorf("%w: Email is required.", ErrInvalidBooking)
    }
    return l.store.ListByEmail(ctx, email)
}

// CancelBooking flips a booking to cancelled.  Cancelling an already
// cancelled booking succeeds with AlreadyCancelled set and publishes no
// event.  Unknown ids return repository.ErrBookingNotFound.
func (l *Ledger) CancelBooking(ctx context.Context, id uint64) (CancelResult, error) {
    already, err := l.store.Cancel(ctx, id)
    if err != nil {
        return CancelResult{}, err
    }
    res := CancelResult{ID: id, AlreadyCancelled: already}
    if already {
        res.Message = fmt.Sprintf("Booking %d was already cancelled.", id)
        return res, nil
    }
    res.Message = fmt.Sprintf("Booking %d has been cancelled.", id)
    if l.events != nil {
        if b, err := l.store.GetByID(ctx, id); err == nil {
            l.publish(ctx, queue.EventBookingCancelled, b)
        } else {
            log.Printf("ledger: load booking %d for cancel event: %v", id, err)
        }
    }
    return res, nil
}

// GetAllBookings returns the bookings of date in slot order, or the most
// recent 100 bookings when date is empty.
func (l *Ledger) GetAllBookings(ctx context.Context, date string) ([]model.Booking, error) {
    date = strings.TrimSpace(date)
    if date == "" {
        return l.store.ListRecent(ctx, recentLimit)
    }
    if err := l.checkDate(date); err != nil {
        return nil, err
    }
    return l.store.ListByDate(ctx, date)
}

// IsSlot reports whether s is one of the configured slots.
func (l *Ledger) IsSlot(s string) bool {
    _, ok := l.slots[s]
    return ok
}

func (l *Ledger) validate(b *model.Booking) error {
    if err := l.checkPartySize(b.PartySize); err != nil {
        return err
    }
    switch {
    case b.CustomerName == "":
        return fmt.Errorf("%w: Name is required.", ErrInvalidBooking)
    case b.Email == "":
        return fmt.Errorf("%w: Email is required.", ErrInvalidBooking)
    case b.Phone == "":
        return fmt.Errorf("%w: Phone is required.", ErrInvalidBooking)
    case b.Date == "":
        return fmt.Errorf("%w: Date is required.", ErrInvalidBooking)
    case b.Time == "":
        return fmt.Errorf("%w: Time is required.", ErrInvalidBooking)
    }
    if addr, err := mail.ParseAddress(b.Email); err != nil || addr.Address != b.Email {
        return fmt.Errorf("%w: Please provide a valid email address.", ErrInvalidBooking)
    }
    if err := l.checkDate(b.Date); err != nil {
        return err
    }
    return l.checkSlot(b.Time)
}

func (l *Ledger) checkPartySize(n int) error {
    if n < l.cfg.MinPartySize || n > l.cfg.MaxPartySize {
        return fmt.Errorf("%w: Party size must be between %d and %d guests.",
            ErrInvalidBooking, l.cfg.MinPartySize, l.cfg.MaxPartySize)
    }
    return nil
}

func (l *Ledger) checkDate(date string) error {
    if _, err := time.Parse("2006-01-02", date); err != nil {
        return fmt.Errorf("%w: Date must be in YYYY-MM-DD format.", ErrInvalidBooking)
    }
    return nil
}

func (l *Ledger) checkSlot(slot string) error {
    if !l.IsSlot(slot) {
        return fmt.Errorf("%w: %q is not an available reservation time.", ErrInvalidBooking, slot)
    }
    return nil
}

// publish sends an event without failing the caller.  The booking is
// already committed, so a broker outage only costs the email and log line.
func (l *Ledger) publish(ctx context.Context, typ string, b *model.Booking) {
    if l.events == nil {
        return
    }
    ev := queue.BookingEvent{
        Type:         typ,
        BookingID:    b.ID,
        CustomerName: b.CustomerName,
        Email:        b.Email,
        Date:         b.Date,
        Time:         b.Time,
        PartySize:    b.PartySize,
        OccurredAt:   l.now().UTC().Format(time.RFC3339),
    }
    if err := l.events.PublishBooking(ctx, ev); err != nil {
        log.Printf("ledger: publish %s for booking %d failed: %v", typ, b.ID, err)
    }
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
