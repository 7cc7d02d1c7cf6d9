package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier is told about every event the consumer accepts.  The SMTP mailer
// implements it; a nil Notifier disables notifications.
type Notifier interface {
    NotifyBooking(ev BookingEvent) error
}

// Consumer drains the booking.confirmed and booking.cancelled queues.  Each
// event is appended as one line to LogDir/booking.log and then handed to the
// Notifier.
type Consumer struct {
    URL      string
    LogDir   string
    Notifier Notifier
}

// NewConsumer returns a Consumer writing to logDir ("logs" when empty).
func NewConsumer(url, logDir string, n Notifier) *Consumer {
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{URL: url, LogDir: logDir, Notifier: n}
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures back off exponentially up to 30s; a closed delivery channel
// triggers a reconnect.  Run only returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("booking-consumer: set QoS failed: %v", err)
    }

    // One consumer per queue, fanned into a single loop.  done stops the
    // forwarders once this loop returns.
    merged := make(chan amqp.Delivery)
    done := make(chan struct{})
    defer close(done)
    for _, name := range []string{EventBookingConfirmed, EventBookingCancelled} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        go forward(done, msgs, merged)
    }

    closed := conn.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case amqpErr := <-closed:
            if amqpErr != nil {
                return amqpErr
            }
            return errors.New("connection closed")
        case d := <-merged:
            if err := c.HandleMessage(d.Body); err != nil {
                log.Printf("booking-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// forward copies deliveries from in to out until in is closed or done is.
func forward(done <-chan struct{}, in <-chan amqp.Delivery, out chan<- amqp.Delivery) {
    for d := range in {
        select {
        case out <- d:
        case <-done:
            return
        }
    }
}

// HandleMessage decodes one event body, appends it to the booking log and
// notifies the guest.  A notification failure is logged but does not fail
// the message, since the log line is already written.
func (c *Consumer) HandleMessage(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLogLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    if c.Notifier != nil {
        if err := c.Notifier.NotifyBooking(ev); err != nil {
            log.Printf("booking-consumer: notify booking %d failed: %v", ev.BookingID, err)
        }
    }
    return nil
}

// FormatLogLine renders an event as a single newline-terminated log line.
func FormatLogLine(ev BookingEvent) string {
    verb := "Booking confirmed"
    if ev.Type == EventBookingCancelled {
        verb = "Booking cancelled"
    }
    return fmt.Sprintf("[%s] %s | booking_id=%d | name=%q | email=%s | date=%s | time=%q | party_size=%d\n",
        ev.OccurredAt, verb, ev.BookingID, ev.CustomerName, ev.Email, ev.Date, ev.Time, ev.PartySize)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
