package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UnreadCounts maps participant user ID -> unread message count,
// stored as jsonb on the conversation row.
type UnreadCounts map[string]int

// Scan implements the sql.Scanner interface
func (u *UnreadCounts) Scan(value interface{}) error {
	if value == nil {
		*u = UnreadCounts{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for UnreadCounts: %T", value)
	}
	return json.Unmarshal(data, u)
}

// Value implements the driver.Valuer interface
func (u UnreadCounts) Value() (driver.Value, error) {
	if u == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(u)
}

// Conversation is a two-participant message thread with a denormalized
// preview of the last message and per-participant unread counters.
type Conversation struct {
	ID string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`

	Participants StringArray `gorm:"type:text[];not null" json:"participants"`

	LastMessage       string    `gorm:"type:text" json:"last_message"`
	LastMessageSender string    `json:"last_message_sender"`
	LastMessageAt     time.Time `gorm:"index" json:"last_message_at"`

	// Updated together with the message insert, but not atomically
	// with it. A crash between the two writes can leave the counter
	// behind by one; mark-read resets it.
	UnreadCounts UnreadCounts `gorm:"type:jsonb;default:'{}'" json:"unread_counts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

// OtherParticipant returns the participant that is not the given user
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// Message is a single chat message inside a conversation
type Message struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ConversationID string `gorm:"not null;index" json:"conversation_id"`
	SenderID       string `gorm:"not null" json:"sender_id"`
	ReceiverID     string `gorm:"not null;index" json:"receiver_id"`
	Text           string `gorm:"type:text;not null" json:"text"`
	Read           bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}
