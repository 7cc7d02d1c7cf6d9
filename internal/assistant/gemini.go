package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini opens stateful chats against the Gemini API.  The remote chat keeps
// the history, so only the new turn is sent each time.
type Gemini struct {
	client *genai.Client
	model  string
	err    error // set when the client could not be created
}

// NewGemini creates a Gemini generator.  A client construction failure (for
// example a missing API key) is not returned; it surfaces on every Start so
// visitors receive the apology reply instead of the server refusing to boot.
func NewGemini(ctx context.Context, apiKey, model string) *Gemini {
	g := &Gemini{model: model}
	if apiKey == "" {
		g.err = errors.New("gemini: GEMINI_API_KEY is not set")
		return g
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		g.err = fmt.Errorf("gemini: create client: %w", err)
		return g
	}
	g.client = client
	return g
}

// Start implements Generator.
func (g *Gemini) Start(ctx context.Context) (Conversation, error) {
	if g.err != nil {
		return nil, g.err
	}
	chat, err := g.client.Chats.Create(ctx, g.model, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: start chat: %w", err)
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, text string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini: empty response")
	}
	return out, nil
}
