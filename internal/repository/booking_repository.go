package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/restaurant-assistant/internal/model"
)

// dateLayout is the wire and storage format of booking dates.
const dateLayout = "2006-01-02"

// BookingRepo provides persistence for table reservations.  Rows are never
// deleted; cancellation only flips the status column.  Admission for a
// (date, time) slot is serialized by locking the matching slot_locks row
// inside the inserting transaction, so two concurrent requests for the same
// slot cannot both pass the capacity check.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, customer_name, email, phone, date, time, party_size, special_requests, status, created_at`

// CreateIfAvailable inserts b with status confirmed when the confirmed
// occupancy of (b.Date, b.Time) plus b.PartySize does not exceed capacity.
// slotMinutes is the chronological sort key of b.Time.  On success the
// generated ID, Status and CreatedAt are written back to b.  ErrSlotFull is
// returned when the slot cannot take the party; nothing is written in that
// case.
func (r *BookingRepo) CreateIfAvailable(ctx context.Context, b *model.Booking, slotMinutes, capacity int) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // The upsert takes an exclusive lock on the row whether it inserts or
    // hits the duplicate key, so admissions to one slot queue here.
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO slot_locks (date, time) VALUES (?, ?) ON DUPLICATE KEY UPDATE time = time`,
        b.Date, b.Time); err != nil {
        return err
    }

    var occupied int
    if err := tx.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(party_size), 0) FROM bookings WHERE date = ? AND time = ? AND status = 'confirmed'`,
        b.Date, b.Time).Scan(&occupied); err != nil {
        return err
    }
    if occupied+b.PartySize > capacity {
        return ErrSlotFull
    }

    createdAt := time.Now().UTC().Truncate(time.Second)
    res, err := tx.ExecContext(ctx,
        `INSERT INTO bookings (customer_name, email, phone, date, time, time_minutes, party_size, special_requests, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'confirmed', ?)`,
        b.CustomerName, b.Email, b.Phone, b.Date, b.Time, slotMinutes, b.PartySize, nullString(b.SpecialRequests), createdAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    b.ID = uint64(id)
    b.Status = model.BookingConfirmed
    b.CreatedAt = createdAt
    return nil
}

// Occupancy returns the number of guests in confirmed bookings for a slot.
func (r *BookingRepo) Occupancy(ctx context.Context, date, slot string) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(party_size), 0) FROM bookings WHERE date = ? AND time = ? AND status = 'confirmed'`,
        date, slot).Scan(&n)
    return n, err
}

// OccupancyByDate returns confirmed guests per slot label for one date.
// Slots without confirmed bookings are absent from the map.
func (r *BookingRepo) OccupancyByDate(ctx context.Context, date string) (map[string]int, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT time, SUM(party_size) FROM bookings WHERE date = ? AND status = 'confirmed' GROUP BY time`, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make(map[string]int)
    for rows.Next() {
        var slot string
        var guests int
        if err := rows.Scan(&slot, &guests); err != nil {
            return nil, err
        }
        out[slot] = guests
    }
    return out, rows.Err()
}

// GetByID fetches a booking.  ErrBookingNotFound is returned when no row
// matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
    b, err := scanBooking(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// ListByEmail returns every booking made under email, newest reservation
// date first and later slots before earlier ones on the same day.
func (r *BookingRepo) ListByEmail(ctx context.Context, email string) ([]model.Booking, error) {
    return r.list(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE email = ? ORDER BY date DESC, time_minutes DESC, id DESC`, email)
}

// ListByDate returns every booking for a date in slot order.
func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]model.Booking, error) {
    return r.list(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE date = ? ORDER BY time_minutes ASC, id ASC`, date)
}

// ListRecent returns at most limit bookings ordered by date and slot,
// latest first.
func (r *BookingRepo) ListRecent(ctx context.Context, limit int) ([]model.Booking, error) {
    return r.list(ctx,
        `SELECT `+bookingColumns+` FROM bookings ORDER BY date DESC, time_minutes DESC, id DESC LIMIT ?`, limit)
}

// Cancel marks a booking as cancelled.  It reports alreadyCancelled=true
// without writing when the booking was cancelled before, and returns
// ErrBookingNotFound for unknown ids.  The status row is locked for the
// duration of the check so two cancellations cannot both observe
// "confirmed".
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) (alreadyCancelled bool, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    var status string
    err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ? FOR UPDATE`, id).Scan(&status)
    if errors.Is(err, sql.ErrNoRows) {
        return false, ErrBookingNotFound
    }
    if err != nil {
        return false, err
    }
    if model.BookingStatus(status) == model.BookingCancelled {
        return true, nil
    }
    if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = 'cancelled' WHERE id = ?`, id); err != nil {
        return false, err
    }
    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return false, nil
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
    var (
        b        model.Booking
        date     time.Time
        requests sql.NullString
        status   string
    )
    if err := s.Scan(&b.ID, &b.CustomerName, &b.Email, &b.Phone, &date, &b.Time,
        &b.PartySize, &requests, &status, &b.CreatedAt); err != nil {
        return nil, err
    }
    b.Date = date.Format(dateLayout)
    b.Status = model.BookingStatus(status)
    if requests.Valid {
        b.SpecialRequests = requests.String
    }
    return &b, nil
}

func nullString(s string) sql.NullString {
    return sql.NullString{String: s, Valid: s != ""}
}
