package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	t.Setenv("RESTAURANT_CAPACITY", "")
	t.Setenv("MIN_PARTY_SIZE", "")
	t.Setenv("MAX_PARTY_SIZE", "")
	t.Setenv("BOOKING_SLOTS", "")

	cfg := LoadLedgerConfig()
	assert.Equal(t, 100, cfg.Capacity)
	assert.Equal(t, 1, cfg.MinPartySize)
	assert.Equal(t, 12, cfg.MaxPartySize)
	assert.Equal(t, DefaultSlots, cfg.Slots)
	assert.Len(t, cfg.Slots, 19)
}

func TestLoadLedgerConfig_CustomSlotsKeepOrderAndDropDuplicates(t *testing.T) {
	t.Setenv("BOOKING_SLOTS", " 6:00 PM,5:00 PM,,6:00 PM , 7:00 PM")
	t.Setenv("RESTAURANT_CAPACITY", "40")

	cfg := LoadLedgerConfig()
	assert.Equal(t, []string{"6:00 PM", "5:00 PM", "7:00 PM"}, cfg.Slots)
	assert.Equal(t, 40, cfg.Capacity)
}

func TestLoadLedgerConfig_InvalidBoundsFallBack(t *testing.T) {
	t.Setenv("MIN_PARTY_SIZE", "8")
	t.Setenv("MAX_PARTY_SIZE", "4")
	t.Setenv("RESTAURANT_CAPACITY", "0")

	cfg := LoadLedgerConfig()
	assert.Equal(t, 1, cfg.MinPartySize)
	assert.Equal(t, 12, cfg.MaxPartySize)
	assert.Equal(t, 100, cfg.Capacity)
}
