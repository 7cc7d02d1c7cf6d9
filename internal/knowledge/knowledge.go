// Package knowledge holds the restaurant's static facts: contact details,
// opening hours, the menu, wines, offers, dietary notes and chef
// recommendations.  The data ships embedded in the binary and can be replaced
// by pointing RESTAURANT_DATA_FILE at a JSON document with the same shape.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
)

//go:embed restaurant.json
var defaultData []byte

// Hours is one line of the opening hours table.
type Hours struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

// Restaurant describes the venue.
type Restaurant struct {
	Name        string  `json:"name"`
	CuisineType string  `json:"cuisine_type"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Hours       []Hours `json:"hours"`
	Capacity    int     `json:"capacity"`
}

// MenuItem is a dish or drink.  Slug is derived from Name when loading and
// is unique across the menu.
type MenuItem struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category,omitempty"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Dietary     []string `json:"dietary"`
	Popular     bool     `json:"popular,omitempty"`
	ChefSpecial bool     `json:"chef_special,omitempty"`
}

// Category groups menu items.  Categories keep document order.
type Category struct {
	Name  string     `json:"category"`
	Items []MenuItem `json:"items"`
}

// Wine is one bottle on the wine list.
type Wine struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Region string  `json:"region"`
}

// WineCategory groups wines, e.g. "Red Wines".
type WineCategory struct {
	Name  string `json:"category"`
	Items []Wine `json:"items"`
}

// Offer is a recurring promotion.  Price is free text and may be empty.
type Offer struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Price       string `json:"price,omitempty"`
}

// DietaryNote is the house policy for one dietary concern.
type DietaryNote struct {
	Tag  string `json:"tag"`
	Note string `json:"note"`
}

// Base is the complete knowledge base.
type Base struct {
	Restaurant          Restaurant     `json:"restaurant"`
	Menu                []Category     `json:"menu"`
	Wines               []WineCategory `json:"wines"`
	Offers              []Offer        `json:"offers"`
	DietaryInfo         []DietaryNote  `json:"dietary_info"`
	ChefRecommendations []string       `json:"chef_recommendations"`

	bySlug map[string]MenuItem
}

// Load parses the JSON document at path, or the embedded default when path
// is empty.
func Load(path string) (*Base, error) {
	data := defaultData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read restaurant data: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a knowledge base document and indexes its menu.
func Parse(data []byte) (*Base, error) {
	var b Base
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode restaurant data: %w", err)
	}
	if b.Restaurant.Name == "" {
		return nil, fmt.Errorf("decode restaurant data: restaurant name is empty")
	}
	b.bySlug = make(map[string]MenuItem)
	for ci := range b.Menu {
		cat := &b.Menu[ci]
		for ii := range cat.Items {
			it := &cat.Items[ii]
			it.Category = cat.Name
			base := slug.Make(it.Name)
			s := base
			for n := 2; ; n++ {
				if _, taken := b.bySlug[s]; !taken {
					break
				}
				s = fmt.Sprintf("%s-%d", base, n)
			}
			it.Slug = s
			b.bySlug[s] = *it
		}
	}
	return &b, nil
}

// Items returns every menu item in menu order.
func (b *Base) Items() []MenuItem {
	var out []MenuItem
	for _, c := range b.Menu {
		out = append(out, c.Items...)
	}
	return out
}

// Search returns items whose name, description or category contains query,
// ignoring case.  An empty query matches nothing.
func (b *Base) Search(query string) []MenuItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]MenuItem, 0)
	if q == "" {
		return out
	}
	for _, it := range b.Items() {
		if strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Description), q) ||
			strings.Contains(strings.ToLower(it.Category), q) {
			out = append(out, it)
		}
	}
	return out
}

// ByDietary returns items tagged with tag, e.g. "vegan" or "gluten-free".
func (b *Base) ByDietary(tag string) []MenuItem {
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := make([]MenuItem, 0)
	for _, it := range b.Items() {
		for _, d := range it.Dietary {
			if strings.ToLower(d) == tag {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Popular returns items flagged as popular.
func (b *Base) Popular() []MenuItem {
	out := make([]MenuItem, 0)
	for _, it := range b.Items() {
		if it.Popular {
			out = append(out, it)
		}
	}
	return out
}

// ItemBySlug looks up one item.
func (b *Base) ItemBySlug(s string) (MenuItem, bool) {
	it, ok := b.bySlug[strings.ToLower(s)]
	return it, ok
}
