package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-assistant/internal/knowledge"
)

// MenuHandler serves the read-only restaurant knowledge: menu, wines and
// venue information.  Responses are cached by the router when Redis is
// available.
type MenuHandler struct {
    KB *knowledge.Base
}

// NewMenuHandler constructs a MenuHandler and panics on a nil base.
func NewMenuHandler(kb *knowledge.Base) *MenuHandler {
    if kb == nil {
        panic("nil knowledge base passed to NewMenuHandler")
    }
    return &MenuHandler{KB: kb}
}

// Menu handles GET /v1/menu and returns the categories in menu order.
func (h *MenuHandler) Menu(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"categories": h.KB.Menu})
}

// Search handles GET /v1/menu/search?q=.
func (h *MenuHandler) Search(c echo.Context) error {
    q := strings.TrimSpace(c.QueryParam("q"))
    if q == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
    }
    return c.JSON(http.StatusOK, echo.Map{"query": q, "items": h.KB.Search(q)})
}

// Dietary handles GET /v1/menu/dietary/:tag.  The house note for the tag is
// included when one exists.
func (h *MenuHandler) Dietary(c echo.Context) error {
    tag := strings.ToLower(strings.TrimSpace(c.Param("tag")))
    resp := echo.Map{"tag": tag, "items": h.KB.ByDietary(tag)}
    for _, n := range h.KB.DietaryInfo {
        if strings.EqualFold(n.Tag, tag) {
            resp["note"] = n.Note
            break
        }
    }
    return c.JSON(http.StatusOK, resp)
}

// Popular handles GET /v1/menu/popular.
func (h *MenuHandler) Popular(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"items": h.KB.Popular()})
}

// Item handles GET /v1/menu/items/:slug.
func (h *MenuHandler) Item(c echo.Context) error {
    it, ok := h.KB.ItemBySlug(c.Param("slug"))
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
    }
    return c.JSON(http.StatusOK, it)
}

// Wines handles GET /v1/wines.
func (h *MenuHandler) Wines(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"categories": h.KB.Wines})
}

// Info handles GET /v1/info: venue details, hours, offers, dietary policy
// and the chef's recommendations.
func (h *MenuHandler) Info(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "restaurant":           h.KB.Restaurant,
        "offers":               h.KB.Offers,
        "dietary_info":         h.KB.DietaryInfo,
        "chef_recommendations": h.KB.ChefRecommendations,
    })
}
