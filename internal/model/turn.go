package model

import "time"

// Turn is one message of an assistant conversation.
type Turn struct {
    Role    string    `json:"role"` // "user" or "assistant"
    Content string    `json:"content"`
    At      time.Time `json:"at"`
}
