package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-assistant/internal/handler"
)

// RegisterMenu registers the read-only knowledge endpoints.  cache stores
// their responses in Redis.
func RegisterMenu(e *echo.Echo, h *handler.MenuHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/menu", h.Menu)
	g.GET("/menu/search", h.Search)
	g.GET("/menu/dietary/:tag", h.Dietary)
	g.GET("/menu/popular", h.Popular)
	g.GET("/menu/items/:slug", h.Item)
	g.GET("/wines", h.Wines)
	g.GET("/info", h.Info)
}

// RegisterAssistant registers the chat and voice endpoints.  Both reach
// paid upstream APIs, so every route is rate limited.  v may be nil; the
// voice routes then report every capability as disabled.
func RegisterAssistant(e *echo.Echo, ch *handler.ChatHandler, v *handler.VoiceHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", limiter)
	g.POST("/chat", ch.Chat)
	g.POST("/chat/:session/reset", ch.Reset)
	g.GET("/chat/:session/history", ch.History)

	if v == nil {
		v = &handler.VoiceHandler{}
	}
	g.GET("/voice/status", v.Status)
	g.POST("/voice/listen", v.Listen)
	g.POST("/voice/speak", v.Speak)
	g.POST("/voice/chat", v.Chat)
	e.GET("/v1/voice/audio/:name", v.Audio)
}
