package queue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	got []BookingEvent
	err error
}

func (r *recordingNotifier) NotifyBooking(ev BookingEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestFormatLogLine(t *testing.T) {
	ev := BookingEvent{
		Type:         EventBookingConfirmed,
		BookingID:    12,
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		Date:         "2026-11-02",
		Time:         "7:00 PM",
		PartySize:    4,
		OccurredAt:   "2026-10-18T10:00:00Z",
	}
	assert.Equal(t,
		"[2026-10-18T10:00:00Z] Booking confirmed | booking_id=12 | name=\"Ada Lovelace\" | email=ada@example.com | date=2026-11-02 | time=\"7:00 PM\" | party_size=4\n",
		FormatLogLine(ev))

	ev.Type = EventBookingCancelled
	assert.Contains(t, FormatLogLine(ev), "] Booking cancelled | booking_id=12")
}

func TestHandleMessage_AppendsAndNotifies(t *testing.T) {
	dir := t.TempDir()
	n := &recordingNotifier{err: errors.New("smtp down")}
	c := NewConsumer("", dir, n)

	for _, id := range []uint64{1, 2} {
		body, _ := json.Marshal(BookingEvent{Type: EventBookingConfirmed, BookingID: id})
		require.NoError(t, c.HandleMessage(body))
	}

	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "booking_id=1 ")
	assert.Contains(t, string(data), "booking_id=2 ")
	assert.Len(t, n.got, 2)
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	c := NewConsumer("", t.TempDir(), nil)
	assert.Error(t, c.HandleMessage([]byte("{not json")))
}

func TestForward_StopsWhenLoopEnds(t *testing.T) {
	in := make(chan amqp.Delivery, 1)
	in <- amqp.Delivery{Body: []byte("{}")}
	out := make(chan amqp.Delivery) // nobody reads, as after a dropped connection
	done := make(chan struct{})

	exited := make(chan struct{})
	go func() {
		forward(done, in, out)
		close(exited)
	}()

	close(done)
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder still blocked after its consume loop returned")
	}
}

func TestForward_DrainsUntilInputCloses(t *testing.T) {
	in := make(chan amqp.Delivery, 2)
	in <- amqp.Delivery{Body: []byte("a")}
	in <- amqp.Delivery{Body: []byte("b")}
	close(in)
	out := make(chan amqp.Delivery, 2)

	forward(make(chan struct{}), in, out)
	require.Len(t, out, 2)
	assert.Equal(t, "a", string((<-out).Body))
}
