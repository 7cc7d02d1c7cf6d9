package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Base {
	t.Helper()
	b, err := Load("")
	require.NoError(t, err)
	return b
}

func names(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestLoad_Default(t *testing.T) {
	b := loadDefault(t)
	assert.Equal(t, "Bella Vista Restaurant", b.Restaurant.Name)
	assert.Equal(t, 100, b.Restaurant.Capacity)

	var cats []string
	for _, c := range b.Menu {
		cats = append(cats, c.Name)
	}
	assert.Equal(t, []string{"Appetizers", "Main Courses", "Pasta", "Desserts", "Beverages"}, cats)
	assert.Len(t, b.Items(), 23)
	assert.Len(t, b.Wines, 2)
}

func TestSearch(t *testing.T) {
	b := loadDefault(t)
	assert.ElementsMatch(t, []string{"Seafood Linguine", "Lobster Ravioli"}, names(b.Search("LOBSTER")))
	// Category names match too.
	assert.Len(t, b.Search("dessert"), 4)
	assert.Empty(t, b.Search("   "))
	assert.Empty(t, b.Search("sushi"))
}

func TestByDietary(t *testing.T) {
	b := loadDefault(t)
	assert.Equal(t,
		[]string{"Penne Arrabbiata", "Italian Espresso", "Fresh Lemonade", "San Pellegrino"},
		names(b.ByDietary("Vegan")))
	for _, it := range b.ByDietary("gluten-free") {
		assert.Contains(t, it.Dietary, "gluten-free")
	}
}

func TestPopular(t *testing.T) {
	b := loadDefault(t)
	pop := b.Popular()
	assert.Len(t, pop, 15)
	for _, it := range pop {
		assert.True(t, it.Popular)
	}
}

func TestItemBySlug(t *testing.T) {
	b := loadDefault(t)
	it, ok := b.ItemBySlug("osso-buco")
	require.True(t, ok)
	assert.Equal(t, "Main Courses", it.Category)
	assert.True(t, it.ChefSpecial)

	_, ok = b.ItemBySlug("pizza")
	assert.False(t, ok)
}

func TestParse_DuplicateNamesGetDistinctSlugs(t *testing.T) {
	doc := `{"restaurant":{"name":"X"},"menu":[{"category":"A","items":[{"name":"Soup"},{"name":"Soup"}]}]}`
	b, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "soup", b.Menu[0].Items[0].Slug)
	assert.Equal(t, "soup-2", b.Menu[0].Items[1].Slug)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"restaurant":{"name":"Trattoria","capacity":40}}`), 0o644))
	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Trattoria", b.Restaurant.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	_, err = Parse([]byte(`{"restaurant":{}}`))
	assert.Error(t, err)
}

func TestPreamble(t *testing.T) {
	p := loadDefault(t).Preamble()
	assert.True(t, strings.HasPrefix(p,
		"You are an AI assistant for Bella Vista Restaurant, a premium Italian-Mediterranean Fusion restaurant."))
	for _, want := range []string{
		"- Phone: +1 (555) 123-4567",
		"- Friday-Saturday: 11:00 AM - 11:00 PM",
		"CAPACITY: 100 guests",
		"MAIN COURSES\n",
		"Ribeye Steak - $38.99",
		"  Dietary: vegetarian, gluten-free",
		"Chef's Special",
		"Sunday Brunch: Special brunch menu with bottomless mimosas",
		"Price: $89.99 per person",
		"- Gluten-Free: Gluten-free pasta and bread available upon request",
		"- Tiramisu - Made with our secret family recipe",
		"YOUR ROLE:",
	} {
		assert.Contains(t, p, want)
	}
}
