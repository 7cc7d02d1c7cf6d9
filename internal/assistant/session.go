// Package assistant runs the visitor-facing chat.  A Session forwards turns
// to a generative backend, prefixing the very first turn with the restaurant
// knowledge preamble; a Manager keeps one Session per visitor.
package assistant

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/restaurant-assistant/internal/model"
)

// ResetMessage is returned by Session.Reset.
const ResetMessage = "Conversation reset. How can I help you today?"

// Generator opens remote conversations.
type Generator interface {
	Start(ctx context.Context) (Conversation, error)
}

// Conversation is one stateful exchange with the model.  Send returns the
// model's reply to text given everything sent before on the same
// Conversation.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
}

// Apology is the reply shown to the visitor when the backend fails.
func Apology(err error) string {
	return fmt.Sprintf("I apologize, but I'm having trouble processing your request. Error: %v", err)
}

// Session is one visitor's conversation.  It is fresh until the first
// successful exchange and seeded afterwards; Reset makes it fresh again.
// Sends on one Session are serialized.
type Session struct {
	mu       sync.Mutex
	gen      Generator
	preamble string
	conv     Conversation
	history  []model.Turn
	lastUsed atomic.Int64 // unix nanoseconds, read without mu
	now      func() time.Time
}

// NewSession returns a fresh session.
func NewSession(gen Generator, preamble string) *Session {
	s := &Session{gen: gen, preamble: preamble, now: time.Now}
	s.touch()
	return s
}

// Send forwards msg to the model and returns its reply.  While the session
// is fresh the preamble is sent in front of msg.  On failure the returned
// reply is the apology text, err carries the cause and no turn is recorded,
// so the next message still carries the preamble.
func (s *Session) Send(ctx context.Context, msg string) (string, error) {
	reply, _, err := s.exchange(ctx, msg)
	return reply, err
}

// exchange is Send that also returns the two turns it recorded.
func (s *Session) exchange(ctx context.Context, msg string) (string, []model.Turn, error) {
	s.touch()
	defer s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conv == nil {
		conv, err := s.gen.Start(ctx)
		if err != nil {
			return Apology(err), nil, err
		}
		s.conv = conv
	}

	full := msg
	if len(s.history) == 0 {
		full = s.preamble + "\n\nCustomer: " + msg
	}
	reply, err := s.conv.Send(ctx, full)
	if err != nil {
		return Apology(err), nil, err
	}

	at := s.now().UTC()
	turns := []model.Turn{
		{Role: "user", Content: msg, At: at},
		{Role: "assistant", Content: reply, At: at},
	}
	s.history = append(s.history, turns...)
	return reply, turns, nil
}

// Reset drops the history and the remote conversation.
func (s *Session) Reset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.conv = nil
	s.touch()
	return ResetMessage
}

// History returns a copy of the recorded turns, oldest first.
func (s *Session) History() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Seeded reports whether the preamble has been delivered.
func (s *Session) Seeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 0
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

// idleSince does not take mu, so it never waits on a model call in flight.
func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}
