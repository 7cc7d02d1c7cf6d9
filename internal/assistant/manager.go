package assistant

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-assistant/internal/model"
)

// TranscriptStore persists turns outside the process.
// repository.TranscriptRepo implements it on Redis.
type TranscriptStore interface {
	Append(ctx context.Context, session string, turns ...model.Turn) error
	List(ctx context.Context, session string) ([]model.Turn, error)
	Clear(ctx context.Context, session string) error
}

// Manager owns the live sessions, keyed by a UUID handed to the client.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	gen         Generator
	preamble    string
	ttl         time.Duration
	transcripts TranscriptStore
	now         func() time.Time
}

// NewManager builds a manager.  transcripts may be nil.
func NewManager(gen Generator, preamble string, ttl time.Duration, transcripts TranscriptStore) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		gen:         gen,
		preamble:    preamble,
		ttl:         ttl,
		transcripts: transcripts,
		now:         time.Now,
	}
}

// Chat sends msg on the session named id, creating the session when id is
// empty or unknown.  It returns the id in use and the reply; err is the
// backend failure behind an apology reply, if any.
func (m *Manager) Chat(ctx context.Context, id, msg string) (string, string, error) {
	id, s, renewed := m.session(id)
	if renewed && m.transcripts != nil {
		if err := m.transcripts.Clear(ctx, id); err != nil {
			log.Printf("assistant: clear stale transcript %s: %v", id, err)
		}
	}
	reply, turns, err := s.exchange(ctx, msg)
	if err != nil {
		log.Printf("assistant: session %s: %v", id, err)
		return id, reply, err
	}
	if m.transcripts != nil {
		if terr := m.transcripts.Append(ctx, id, turns...); terr != nil {
			log.Printf("assistant: mirror transcript %s: %v", id, terr)
		}
	}
	return id, reply, nil
}

// Reset clears a session and returns the id in use with the reset
// message.  Unknown ids are created fresh so the client can keep using the
// id it holds.
func (m *Manager) Reset(ctx context.Context, id string) (string, string) {
	id, s, _ := m.session(id)
	if m.transcripts != nil {
		if err := m.transcripts.Clear(ctx, id); err != nil {
			log.Printf("assistant: clear transcript %s: %v", id, err)
		}
	}
	return id, s.Reset()
}

// History returns the turns of a session.  When the session is not live
// the transcript store is consulted; an unknown id yields an empty list.
func (m *Manager) History(ctx context.Context, id string) ([]model.Turn, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return s.History(), nil
	}
	if m.transcripts != nil {
		return m.transcripts.List(ctx, id)
	}
	return []model.Turn{}, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict drops sessions idle for longer than the TTL and returns how many
// were removed.  Transcripts are kept so History still answers for an
// evicted id; the next Chat on that id starts a new transcript.
func (m *Manager) Evict() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// session returns the live session for id, creating it when needed.
// renewed reports that a client-supplied id had no live session, so any
// transcript stored under it belongs to an earlier conversation.
func (m *Manager) session(id string) (string, *Session, bool) {
	known := true
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		known = false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = NewSession(m.gen, m.preamble)
		s.now = m.now
		s.touch()
		m.sessions[id] = s
	}
	return id, s, known && !ok
}
