package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iliyamo/restaurant-assistant/internal/config"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// GoogleTranscriber uses Google Cloud Speech-to-Text synchronous
// recognition.  Authentication relies on Application Default Credentials.
type GoogleTranscriber struct {
	client    *speech.Client
	recognize recognizeFunc
	cfg       config.VoiceConfig
	encoding  speechpb.RecognitionConfig_AudioEncoding
}

// NewGoogleTranscriber creates the Speech client.
func NewGoogleTranscriber(ctx context.Context, cfg config.VoiceConfig) (*GoogleTranscriber, error) {
	enc, err := parseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	t := &GoogleTranscriber{client: client, cfg: cfg, encoding: enc}
	t.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return t, nil
}

// Close releases the client connection.
func (t *GoogleTranscriber) Close() error {
	if t.client == nil {
		return nil
	}
	return t.client.Close()
}

// Listen implements Transcriber.
func (t *GoogleTranscriber) Listen(ctx context.Context, req ListenRequest) (string, error) {
	if len(req.Audio) == 0 {
		return "", ErrNoSpeech
	}
	timeout, limit := req.Timeout, req.PhraseTimeLimit
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if limit <= 0 {
		limit = DefaultPhraseTimeLimit
	}
	audio := req.Audio
	// Only raw PCM can be cut by length; compressed containers go through whole.
	if t.encoding == speechpb.RecognitionConfig_LINEAR16 && t.cfg.SampleRateHertz > 0 {
		maxBytes := int(limit.Seconds() * float64(t.cfg.SampleRateHertz) * 2)
		if len(audio) > maxBytes {
			audio = audio[:maxBytes-maxBytes%2]
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+limit)
	defer cancel()
	resp, err := t.recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        t.encoding,
			SampleRateHertz: int32(t.cfg.SampleRateHertz),
			LanguageCode:    t.cfg.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	return transcript(resp, err)
}

// transcript classifies a recognize outcome into text or a Listen error.
func transcript(resp *speechpb.RecognizeResponse, err error) (string, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
			return "", ErrNoSpeech
		}
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	var parts []string
	for _, r := range resp.GetResults() {
		if alts := r.GetAlternatives(); len(alts) > 0 {
			if s := strings.TrimSpace(alts[0].GetTranscript()); s != "" {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) == 0 {
		return "", ErrUnintelligible
	}
	return strings.Join(parts, " "), nil
}

func parseEncoding(s string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "", "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported VOICE_ENCODING %q", s)
	}
}
