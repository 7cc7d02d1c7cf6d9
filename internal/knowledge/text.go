package knowledge

import (
	"fmt"
	"strings"
)

// MenuText renders the full menu grouped by category, one block per item
// with its price, description, dietary tags and flags.
func (b *Base) MenuText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s MENU\n\n", strings.ToUpper(b.Restaurant.Name))
	for _, c := range b.Menu {
		fmt.Fprintf(&sb, "\n%s\n%s\n", strings.ToUpper(c.Name), strings.Repeat("=", 50))
		for _, it := range c.Items {
			fmt.Fprintf(&sb, "\n%s - $%.2f\n", it.Name, it.Price)
			fmt.Fprintf(&sb, "  %s\n", it.Description)
			if len(it.Dietary) > 0 {
				fmt.Fprintf(&sb, "  Dietary: %s\n", strings.Join(it.Dietary, ", "))
			}
			if it.Popular {
				sb.WriteString("  ⭐ Popular Choice\n")
			}
			if it.ChefSpecial {
				sb.WriteString("  👨‍🍳 Chef's Special\n")
			}
		}
	}
	return sb.String()
}

// Preamble is the knowledge block sent ahead of a visitor's first chat
// message.  It tells the model who it speaks for and everything it may
// quote: contact details, hours, capacity, menu, offers, dietary policy and
// chef recommendations.
func (b *Base) Preamble() string {
	r := b.Restaurant
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an AI assistant for %s, a premium %s restaurant.\n\n", r.Name, r.CuisineType)
	sb.WriteString("RESTAURANT INFORMATION:\n")
	fmt.Fprintf(&sb, "- Name: %s\n- Address: %s\n- Phone: %s\n- Email: %s\n\n", r.Name, r.Address, r.Phone, r.Email)
	sb.WriteString("OPERATING HOURS:\n")
	for _, h := range r.Hours {
		fmt.Fprintf(&sb, "- %s: %s\n", h.Days, h.Hours)
	}
	fmt.Fprintf(&sb, "\nCAPACITY: %d guests\n\n", r.Capacity)

	sb.WriteString(b.MenuText())

	sb.WriteString("\n\nSPECIAL OFFERS:\n")
	for _, o := range b.Offers {
		fmt.Fprintf(&sb, "\n%s: %s\nTime: %s\n", o.Name, o.Description, o.Time)
		if o.Price != "" {
			fmt.Fprintf(&sb, "Price: %s\n", o.Price)
		}
	}

	sb.WriteString("\n\nDIETARY INFORMATION:\n")
	for _, d := range b.DietaryInfo {
		fmt.Fprintf(&sb, "- %s: %s\n", titleCase(d.Tag), d.Note)
	}

	sb.WriteString("\n\nCHEF'S RECOMMENDATIONS:\n")
	for _, rec := range b.ChefRecommendations {
		fmt.Fprintf(&sb, "- %s\n", rec)
	}

	sb.WriteString(roleBlock)
	return sb.String()
}

const roleBlock = `

YOUR ROLE:
You are a friendly, knowledgeable, and professional restaurant assistant. Your responsibilities include:
1. Answering questions about the menu, ingredients, and dishes
2. Providing recommendations based on customer preferences
3. Sharing information about restaurant hours, location, and policies
4. Assisting with dietary restrictions and allergies
5. Explaining special offers and promotions
6. Helping customers understand the booking process

GUIDELINES:
- Be warm, welcoming, and enthusiastic about the restaurant
- Provide detailed, accurate information from the menu and restaurant data
- If asked about bookings, guide users to use the booking system
- If you don't know something, be honest and offer to help in other ways
- Use emojis occasionally to be friendly (🍽️, 🍷, 👨‍🍳, ⭐)
- Keep responses concise but informative
- Always prioritize customer satisfaction

Remember: You represent a premium dining establishment. Maintain a professional yet friendly tone.
`

// titleCase upper-cases the first letter of each hyphen or space separated
// word: "gluten-free" becomes "Gluten-Free".
func titleCase(s string) string {
	out := []byte(s)
	up := true
	for i, c := range out {
		if up && c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
		up = c == '-' || c == ' '
	}
	return string(out)
}
