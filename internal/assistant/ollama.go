package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Ollama talks to a local Ollama server's /api/chat endpoint.  Ollama is
// stateless, so each conversation keeps its messages and resends them.
type Ollama struct {
	httpClient *http.Client
	URL        string
	Model      string
}

// NewOllama returns an Ollama generator for url (the full /api/chat URL).
func NewOllama(url, model string) *Ollama {
	return &Ollama{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		URL:        url,
		Model:      model,
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// Start implements Generator.
func (o *Ollama) Start(context.Context) (Conversation, error) {
	return &ollamaChat{o: o}, nil
}

type ollamaChat struct {
	o        *Ollama
	messages []ollamaMessage
}

func (c *ollamaChat) Send(ctx context.Context, text string) (string, error) {
	msgs := append(append([]ollamaMessage(nil), c.messages...), ollamaMessage{Role: "user", Content: text})
	payload, err := json.Marshal(ollamaRequest{Model: c.o.Model, Messages: msgs, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.o.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send chat request to ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out ollamaResponse
	decErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("ollama returned %s: %s", resp.Status, out.Error)
		}
		return "", fmt.Errorf("ollama returned non-200 status: %s", resp.Status)
	}
	if decErr != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", decErr)
	}
	reply := strings.TrimSpace(out.Message.Content)
	if reply == "" {
		return "", fmt.Errorf("ollama returned an empty message")
	}
	c.messages = append(msgs, ollamaMessage{Role: "assistant", Content: reply})
	return reply, nil
}
