package model

import (
	"encoding/json"
	"time"
)

// MaxConversationMessages bounds the history kept per conversation
const MaxConversationMessages = 30

// Message roles
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ConversationMessage is one turn of a chat conversation
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Intent    string    `json:"intent,omitempty"`
	Entities  []string  `json:"entities,omitempty"`
}

// ConversationState is the bounded per-session chat history.
// Messages are held in a ring; the oldest is evicted once the ring is full.
type ConversationState struct {
	ID              string
	UserPreferences map[string]int
	LastIntent      string

	ring  []ConversationMessage
	start int
}

// NewConversationState creates an empty conversation
func NewConversationState(id string) *ConversationState {
	return &ConversationState{
		ID:              id,
		UserPreferences: make(map[string]int),
		ring:            make([]ConversationMessage, 0, MaxConversationMessages),
	}
}

// Append adds a message, evicting the oldest when the history is full
func (c *ConversationState) Append(msg ConversationMessage) {
	if len(c.ring) < MaxConversationMessages {
		c.ring = append(c.ring, msg)
		return
	}
	c.ring[c.start] = msg
	c.start = (c.start + 1) % MaxConversationMessages
}

// Messages returns the history oldest first
func (c *ConversationState) Messages() []ConversationMessage {
	out := make([]ConversationMessage, 0, len(c.ring))
	out = append(out, c.ring[c.start:]...)
	out = append(out, c.ring[:c.start]...)
	return out
}

// Len returns the number of messages held
func (c *ConversationState) Len() int {
	return len(c.ring)
}

// BumpPreference increments the counter for a detected entity
func (c *ConversationState) BumpPreference(entity string) {
	if c.UserPreferences == nil {
		c.UserPreferences = make(map[string]int)
	}
	c.UserPreferences[entity]++
}

// Reset drops the history, counters and last intent, keeping the id
func (c *ConversationState) Reset() {
	c.ring = c.ring[:0]
	c.start = 0
	c.UserPreferences = make(map[string]int)
	c.LastIntent = ""
}

type conversationJSON struct {
	ID              string                `json:"id"`
	Messages        []ConversationMessage `json:"messages"`
	UserPreferences map[string]int        `json:"user_preferences"`
	LastIntent      string                `json:"last_intent,omitempty"`
}

func (c *ConversationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(conversationJSON{
		ID:              c.ID,
		Messages:        c.Messages(),
		UserPreferences: c.UserPreferences,
		LastIntent:      c.LastIntent,
	})
}

func (c *ConversationState) UnmarshalJSON(data []byte) error {
	var raw conversationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = *NewConversationState(raw.ID)
	for _, m := range raw.Messages {
		c.Append(m)
	}
	for k, v := range raw.UserPreferences {
		c.UserPreferences[k] = v
	}
	c.LastIntent = raw.LastIntent
	return nil
}
