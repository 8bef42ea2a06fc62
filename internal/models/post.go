package models

import (
	"time"

	"gorm.io/gorm"
)

// Media types a post can carry. The home feed serves images, the reels
// feed serves videos; together they cover every post exactly once.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post is a feed item (image post or video reel)
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"not null;index" json:"user_id"`
	Username string `json:"username"`

	MediaURL  string `gorm:"not null" json:"media_url"`
	MediaType string `gorm:"not null;index;default:image" json:"media_type"`
	Caption   string `gorm:"type:text" json:"caption"`
	Location  string `json:"location"`

	// Denormalized counters. Maintained on write, periodically recomputed
	// from post_likes/post_comments by the reconciler.
	LikesCount    int `gorm:"default:0" json:"likes_count"`
	CommentsCount int `gorm:"default:0" json:"comments_count"`
	SharesCount   int `gorm:"default:0" json:"shares_count"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.MediaType == "" {
		p.MediaType = MediaTypeImage
	}
	return nil
}

// PostLike records one user liking one post. A unique (post_id, user_id)
// index makes duplicate likes a constraint violation, not a double count.
type PostLike struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (pl *PostLike) BeforeCreate(tx *gorm.DB) error {
	if pl.ID == "" {
		pl.ID = generateUUID()
	}
	return nil
}

// PostComment is an append-only comment on a post
type PostComment struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID   string `gorm:"not null;index" json:"post_id"`
	UserID   string `gorm:"not null" json:"user_id"`
	Username string `json:"username"`
	Text     string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `json:"created_at"`
}

func (pc *PostComment) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == "" {
		pc.ID = generateUUID()
	}
	return nil
}
