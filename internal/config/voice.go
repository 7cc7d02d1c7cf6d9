package config

import (
    "os"
    "time"
)

// VoiceConfig toggles the speech capabilities.  Listen and Speak are enabled
// independently; both rely on Google Application Default Credentials.
type VoiceConfig struct {
    ListenEnabled   bool
    SpeakEnabled    bool
    LanguageCode    string // speech-to-text language, e.g. en-US
    Encoding        string // LINEAR16, WEBM_OPUS or OGG_OPUS
    SampleRateHertz int
    Timeout         time.Duration
    PhraseTimeLimit time.Duration
    AudioDir        string
    AudioRetention  time.Duration // synthesized files older than this are purged
    DefaultLang     string // text-to-speech language
}

// LoadVoiceConfig reads VOICE_* variables.  The defaults mirror a browser
// recording: 48kHz Opus in a WebM container.
func LoadVoiceConfig() VoiceConfig {
    return VoiceConfig{
        ListenEnabled:   envBool("VOICE_LISTEN_ENABLED", false),
        SpeakEnabled:    envBool("VOICE_SPEAK_ENABLED", false),
        LanguageCode:    envStr("VOICE_LANGUAGE_CODE", "en-US"),
        Encoding:        envStr("VOICE_ENCODING", "WEBM_OPUS"),
        SampleRateHertz: envInt("VOICE_SAMPLE_RATE", 48000),
        Timeout:         envDur("VOICE_TIMEOUT", 5*time.Second),
        PhraseTimeLimit: envDur("VOICE_PHRASE_TIME_LIMIT", 10*time.Second),
        AudioDir:        envStr("VOICE_AUDIO_DIR", os.TempDir()),
        AudioRetention:  envDur("VOICE_AUDIO_RETENTION", 24*time.Hour),
        DefaultLang:     envStr("VOICE_DEFAULT_LANG", "en"),
    }
}
