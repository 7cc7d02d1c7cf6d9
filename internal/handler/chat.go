package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-assistant/internal/assistant"
)

// chatTimeout bounds one model round trip.
const chatTimeout = 60 * time.Second

// ChatHandler exposes the assistant to web visitors.  Model failures are
// not HTTP errors: the visitor receives the apology text with status 200.
type ChatHandler struct {
    Assistant *assistant.Manager
}

// NewChatHandler constructs a ChatHandler and panics on a nil manager.
func NewChatHandler(m *assistant.Manager) *ChatHandler {
    if m == nil {
        panic("nil assistant manager passed to NewChatHandler")
    }
    return &ChatHandler{Assistant: m}
}

type chatReq struct {
    SessionID string `json:"session_id"`
    Message   string `json:"message" validate:"required,max=2000"`
}

type chatResp struct {
    SessionID string `json:"session_id"`
    Reply     string `json:"reply"`
}

// Chat handles POST /v1/chat.  An empty or unknown session_id starts a new
// session whose id is returned for subsequent calls.
func (h *ChatHandler) Chat(c echo.Context) error {
    var req chatReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), chatTimeout)
    defer cancel()

    id, reply, _ := h.Assistant.Chat(ctx, req.SessionID, req.Message)
    return c.JSON(http.StatusOK, chatResp{SessionID: id, Reply: reply})
}

// Reset handles POST /v1/chat/:session/reset.
func (h *ChatHandler) Reset(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, msg := h.Assistant.Reset(ctx, c.Param("session"))
    return c.JSON(http.StatusOK, chatResp{SessionID: id, Reply: msg})
}

// History handles GET /v1/chat/:session/history.
func (h *ChatHandler) History(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id := c.Param("session")
    turns, err := h.Assistant.History(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "history unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"session_id": id, "turns": turns})
}
