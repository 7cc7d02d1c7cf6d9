package config

import (
    "strings"
)

// DefaultSlots is the ordered set of bookable times used when BOOKING_SLOTS
// is not set.
var DefaultSlots = []string{
    "11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM",
    "1:00 PM", "1:30 PM", "2:00 PM", "2:30 PM",
    "5:00 PM", "5:30 PM", "6:00 PM", "6:30 PM",
    "7:00 PM", "7:30 PM", "8:00 PM", "8:30 PM",
    "9:00 PM", "9:30 PM", "10:00 PM",
}

// LedgerConfig holds the admission rules for table reservations.  Capacity is
// the number of guests that can be seated in a single slot.  Slots keeps the
// configured order; availability listings follow it.
type LedgerConfig struct {
    Capacity     int
    MinPartySize int
    MaxPartySize int
    Slots        []string
}

// LoadLedgerConfig builds a LedgerConfig from RESTAURANT_CAPACITY,
// MIN_PARTY_SIZE, MAX_PARTY_SIZE and BOOKING_SLOTS (comma separated).
// Invalid bounds fall back to the defaults.
func LoadLedgerConfig() LedgerConfig {
    cfg := LedgerConfig{
        Capacity:     envInt("RESTAURANT_CAPACITY", 100),
        MinPartySize: envInt("MIN_PARTY_SIZE", 1),
        MaxPartySize: envInt("MAX_PARTY_SIZE", 12),
        Slots:        parseSlots(envStr("BOOKING_SLOTS", "")),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 100
    }
    if cfg.MinPartySize < 1 {
        cfg.MinPartySize = 1
    }
    if cfg.MaxPartySize < cfg.MinPartySize {
        cfg.MinPartySize, cfg.MaxPartySize = 1, 12
    }
    return cfg
}

func parseSlots(s string) []string {
    out := make([]string, 0, len(DefaultSlots))
    seen := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(p)
        if p == "" || seen[p] {
            continue
        }
        seen[p] = true
        out = append(out, p)
    }
    if len(out) == 0 {
        return append(out, DefaultSlots...)
    }
    return out
}
