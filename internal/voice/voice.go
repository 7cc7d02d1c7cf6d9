// Package voice provides the optional speech capabilities that sit in front
// of the assistant: Transcriber turns recorded audio into text and
// Synthesizer turns a reply into an MP3 file.  Either may be disabled, in
// which case callers hold a nil value.
package voice

import (
	"context"
	"errors"
	"time"
)

// Listen failures.  Transcriber implementations return one of these,
// possibly wrapped.
var (
	ErrNoSpeech       = errors.New("no speech detected")
	ErrUnintelligible = errors.New("could not understand audio")
	ErrService        = errors.New("speech service error")
)

// Defaults applied by Listen when the request leaves them zero.
const (
	DefaultTimeout         = 5 * time.Second
	DefaultPhraseTimeLimit = 10 * time.Second
)

// ListenRequest is one recorded utterance.  Timeout bounds the wait for a
// result; PhraseTimeLimit caps how much audio is considered.
type ListenRequest struct {
	Audio           []byte
	Timeout         time.Duration
	PhraseTimeLimit time.Duration
}

// Transcriber converts speech to text.
type Transcriber interface {
	Listen(ctx context.Context, req ListenRequest) (string, error)
}

// Synthesizer converts text to an audio file and returns its path.
type Synthesizer interface {
	Speak(ctx context.Context, text, lang string, slow bool) (string, error)
}

// Status reports which capabilities are available.
type Status struct {
	ListenEnabled bool   `json:"listen_enabled"`
	SpeakEnabled  bool   `json:"speak_enabled"`
	Message       string `json:"message"`
}

// StatusOf describes the pair of capabilities.
func StatusOf(t Transcriber, s Synthesizer) Status {
	st := Status{ListenEnabled: t != nil, SpeakEnabled: s != nil}
	switch {
	case st.ListenEnabled && st.SpeakEnabled:
		st.Message = "Voice input and output are available"
	case st.ListenEnabled:
		st.Message = "Voice input is available; voice output is disabled"
	case st.SpeakEnabled:
		st.Message = "Voice output is available; voice input is disabled"
	default:
		st.Message = "Voice features are disabled"
	}
	return st
}

// UserMessage is the guest-facing text for a Listen failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return "No speech detected. Please try again."
	case errors.Is(err, ErrUnintelligible):
		return "Could not understand audio. Please speak clearly."
	case errors.Is(err, ErrService):
		return "Speech recognition service error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
