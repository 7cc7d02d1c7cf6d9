package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/google/uuid"
)

// slowRate is the speaking rate used when slow speech is requested.
const slowRate = 0.75

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// GoogleSynthesizer renders MP3 files with Google Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client      *texttospeech.Client
	synthesize  synthesizeFunc
	dir         string
	defaultLang string
}

// NewGoogleSynthesizer creates the client and makes sure dir exists.
func NewGoogleSynthesizer(ctx context.Context, dir, defaultLang string) (*GoogleSynthesizer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	s := &GoogleSynthesizer{client: client, dir: dir, defaultLang: defaultLang}
	s.synthesize = func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return client.SynthesizeSpeech(ctx, req)
	}
	return s, nil
}

// Close releases the client connection.
func (s *GoogleSynthesizer) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Dir is where audio files are written.
func (s *GoogleSynthesizer) Dir() string { return s.dir }

// Speak implements Synthesizer.  The file is named <uuid>.mp3 inside Dir.
func (s *GoogleSynthesizer) Speak(ctx context.Context, text, lang string, slow bool) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text-to-speech error: text is empty")
	}
	if lang == "" {
		lang = s.defaultLang
	}
	rate := 1.0
	if slow {
		rate = slowRate
	}
	resp, err := s.synthesize(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  rate,
		},
	})
	if err != nil {
		return "", fmt.Errorf("text-to-speech error: %w", err)
	}
	path := filepath.Join(s.dir, uuid.NewString()+".mp3")
	if err := os.WriteFile(path, resp.GetAudioContent(), 0o644); err != nil {
		return "", fmt.Errorf("text-to-speech error: write audio: %w", err)
	}
	return path, nil
}
