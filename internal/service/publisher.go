package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/restaurant-assistant/internal/queue"
)

// AMQPPublisher publishes booking events to a durable queue named after the
// event type.  A connection is dialled per publish with a short dial
// timeout.
type AMQPPublisher struct {
    URL string
}

// NewAMQPPublisher returns a publisher for the given broker URL.
func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishBooking sends ev to the queue named ev.Type.  Errors are logged and
// returned so the caller can choose to ignore them.  Messages are persistent.
func (p *AMQPPublisher) PublishBooking(ctx context.Context, ev queue.BookingEvent) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(3 * time.Second),
    })
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(ev.Type, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare %s failed: %v", ev.Type, err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    // Default exchange; routing key is the queue name.
    if err := ch.PublishWithContext(ctx, "", ev.Type, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish %s failed: %v", ev.Type, err)
        return err
    }
    return nil
}
