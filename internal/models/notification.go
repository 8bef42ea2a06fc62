package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types
const (
	NotificationLike         = "like"
	NotificationComment      = "comment"
	NotificationFollow       = "follow"
	NotificationStoryView    = "story_view"
	NotificationStoryLike    = "story_like"
	NotificationStoryComment = "story_comment"
	NotificationShare        = "share"
)

// Notification is a best-effort activity record. Creation never blocks
// or fails the action that triggered it.
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"` // recipient

	Type       string `gorm:"not null" json:"type"`
	ActorID    string `gorm:"not null" json:"actor_id"`
	ActorName  string `json:"actor_name"`
	Message    string `gorm:"type:text" json:"message"`
	TargetID   string `gorm:"index" json:"target_id"` // post or story id
	TargetType string `json:"target_type"`
	Read       bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
