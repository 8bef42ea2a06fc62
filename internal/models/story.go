package models

import (
	"time"

	"gorm.io/gorm"
)

// Story is an ephemeral media item visible for 24 hours after creation.
// Expired stories stay in the table; every read filters on expires_at.
// Only an explicit user delete removes the row.
type Story struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"not null;index" json:"user_id"`
	Username string `json:"username"`

	MediaURL  string `gorm:"not null" json:"media_url"`
	MediaType string `gorm:"not null;default:image" json:"media_type"`
	Caption   string `gorm:"type:text" json:"caption"`

	// Set when the story was shared from a post (reel share-to-story)
	OriginalPostID *string `gorm:"type:uuid" json:"original_post_id,omitempty"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	// Denormalized counters, recomputed from story_views/story_likes
	// by the reconciler.
	ViewCount int `gorm:"default:0" json:"view_count"`
	LikeCount int `gorm:"default:0" json:"like_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate sets UUID and default expiration (24 hours)
func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(24 * time.Hour)
	}
	return nil
}

// IsExpired reports whether the story is past its 24h window
func (s *Story) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// StoryView tracks who viewed a story. A unique (story_id, viewer_id)
// index guarantees at most one view row per viewer.
type StoryView struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	StoryID  string `gorm:"not null;index" json:"story_id"`
	ViewerID string `gorm:"not null;index" json:"viewer_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (sv *StoryView) BeforeCreate(tx *gorm.DB) error {
	if sv.ID == "" {
		sv.ID = generateUUID()
	}
	return nil
}

// StoryLike tracks who liked a story, unique per (story_id, user_id)
type StoryLike struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	StoryID string `gorm:"not null;index" json:"story_id"`
	UserID  string `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (sl *StoryLike) BeforeCreate(tx *gorm.DB) error {
	if sl.ID == "" {
		sl.ID = generateUUID()
	}
	return nil
}

// StoryComment is an append-only comment on a story
type StoryComment struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	StoryID  string `gorm:"not null;index" json:"story_id"`
	UserID   string `gorm:"not null" json:"user_id"`
	Username string `json:"username"`
	Text     string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `json:"created_at"`
}

func (sc *StoryComment) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == "" {
		sc.ID = generateUUID()
	}
	return nil
}
