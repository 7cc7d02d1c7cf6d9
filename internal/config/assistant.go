package config

import "time"

// AssistantConfig selects and configures the generative backend used by chat
// sessions.  Backend is "gemini" or "ollama".  When the gemini backend is
// selected and no API key is present the assistant still answers, with the
// apology text produced on every failed call.
type AssistantConfig struct {
    Backend      string
    GeminiAPIKey string
    GeminiModel  string
    OllamaURL    string
    OllamaModel  string
    SessionTTL   time.Duration
    HistoryLimit int64
    DataFile     string
}

// LoadAssistantConfig reads ASSISTANT_* / GEMINI_* / OLLAMA_* variables.
func LoadAssistantConfig() AssistantConfig {
    return AssistantConfig{
        Backend:      envStr("ASSISTANT_BACKEND", "gemini"),
        GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
        GeminiModel:  envStr("GEMINI_MODEL", "gemini-2.5-flash"),
        OllamaURL:    envStr("OLLAMA_URL", "http://localhost:11434/api/chat"),
        OllamaModel:  envStr("OLLAMA_MODEL", "llama3.1:latest"),
        SessionTTL:   envDur("ASSISTANT_SESSION_TTL", 30*time.Minute),
        HistoryLimit: int64(envInt("ASSISTANT_HISTORY_LIMIT", 200)),
        DataFile:     envStr("RESTAURANT_DATA_FILE", ""),
    }
}
