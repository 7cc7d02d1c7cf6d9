package handler

import (
    "context"
    "errors"
    "io"
    "log"
    "net/http"
    "path/filepath"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-assistant/internal/assistant"
    "github.com/iliyamo/restaurant-assistant/internal/config"
    "github.com/iliyamo/restaurant-assistant/internal/voice"
)

// maxAudioBytes caps uploaded recordings.
const maxAudioBytes = 10 << 20

// audioPrefix is the public path synthesized files are served under.
const audioPrefix = "/v1/voice/audio/"

// VoiceHandler fronts the speech capabilities.  STT and TTS are nil when
// the corresponding capability is disabled; the endpoints then answer 503.
type VoiceHandler struct {
    STT       voice.Transcriber
    TTS       voice.Synthesizer
    Assistant *assistant.Manager
    Cfg       config.VoiceConfig
}

// NewVoiceHandler constructs a VoiceHandler.  stt and tts may be nil.
func NewVoiceHandler(stt voice.Transcriber, tts voice.Synthesizer, m *assistant.Manager, cfg config.VoiceConfig) *VoiceHandler {
    return &VoiceHandler{STT: stt, TTS: tts, Assistant: m, Cfg: cfg}
}

type speakReq struct {
    Text string `json:"text" validate:"required,max=5000"`
    Lang string `json:"lang" validate:"max=16"`
    Slow bool   `json:"slow"`
}

// Status handles GET /v1/voice/status.
func (h *VoiceHandler) Status(c echo.Context) error {
    return c.JSON(http.StatusOK, voice.StatusOf(h.STT, h.TTS))
}

// Listen handles POST /v1/voice/listen with a multipart "audio" file and
// returns the transcript.
func (h *VoiceHandler) Listen(c echo.Context) error {
    if h.STT == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "voice input is disabled"})
    }
    audio, err := readAudio(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    text, err := h.transcribe(c.Request().Context(), audio)
    if err != nil {
        return listenError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"text": text})
}

// Speak handles POST /v1/voice/speak and returns the URL of the MP3.
func (h *VoiceHandler) Speak(c echo.Context) error {
    if h.TTS == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "voice output is disabled"})
    }
    var req speakReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    path, err := h.TTS.Speak(ctx, req.Text, req.Lang, req.Slow)
    if err != nil {
        log.Printf("voice: speak: %v", err)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"audio_url": audioPrefix + filepath.Base(path)})
}

// Audio handles GET /v1/voice/audio/:name.  Only bare *.mp3 names inside
// the audio directory are served.
func (h *VoiceHandler) Audio(c echo.Context) error {
    name := c.Param("name")
    if h.TTS == nil || h.Cfg.AudioDir == "" || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".mp3") {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "audio not found"})
    }
    return c.File(filepath.Join(h.Cfg.AudioDir, name))
}

// Chat handles POST /v1/voice/chat: the uploaded audio is transcribed,
// sent to the assistant on the session in the "session_id" form field and
// the reply is spoken back when voice output is enabled.
func (h *VoiceHandler) Chat(c echo.Context) error {
    if h.STT == nil || h.Assistant == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "voice input is disabled"})
    }
    audio, err := readAudio(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    text, err := h.transcribe(c.Request().Context(), audio)
    if err != nil {
        return listenError(c, err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), chatTimeout)
    defer cancel()

    id, reply, _ := h.Assistant.Chat(ctx, c.FormValue("session_id"), text)
    resp := echo.Map{"session_id": id, "transcript": text, "reply": reply}
    if h.TTS != nil {
        if path, err := h.TTS.Speak(ctx, reply, "", false); err == nil {
            resp["audio_url"] = audioPrefix + filepath.Base(path)
        } else {
            log.Printf("voice: speak reply for %s: %v", id, err)
        }
    }
    return c.JSON(http.StatusOK, resp)
}

func (h *VoiceHandler) transcribe(ctx context.Context, audio []byte) (string, error) {
    return h.STT.Listen(ctx, voice.ListenRequest{
        Audio:           audio,
        Timeout:         h.Cfg.Timeout,
        PhraseTimeLimit: h.Cfg.PhraseTimeLimit,
    })
}

// readAudio returns the bytes of the multipart "audio" field.
func readAudio(c echo.Context) ([]byte, error) {
    fh, err := c.FormFile("audio")
    if err != nil {
        return nil, errors.New("audio file required")
    }
    if fh.Size > maxAudioBytes {
        return nil, errors.New("audio file too large")
    }
    f, err := fh.Open()
    if err != nil {
        return nil, errors.New("audio file unreadable")
    }
    defer f.Close()
    data, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
    if err != nil || len(data) == 0 {
        return nil, errors.New("audio file unreadable")
    }
    return data, nil
}

func listenError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, voice.ErrNoSpeech), errors.Is(err, voice.ErrUnintelligible):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": voice.UserMessage(err)})
    case errors.Is(err, voice.ErrService):
        return c.JSON(http.StatusBadGateway, echo.Map{"error": voice.UserMessage(err)})
    default:
        log.Printf("voice: listen: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": voice.UserMessage(err)})
    }
}
