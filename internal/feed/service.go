package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"github.com/timepass/backend/internal/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors returned by feed operations
var (
	ErrPostNotFound = errors.New("post not found")
	ErrAlreadyLiked = errors.New("post already liked")
	ErrNotLiked     = errors.New("post not liked")
)

// Service serves the two feed partitions and post interactions. Every
// post lands in exactly one feed: images (and anything non-video) on
// the home feed, videos on reels.
type Service struct {
	db       *gorm.DB
	notifier *notifications.Service
}

// NewService creates a feed service
func NewService(db *gorm.DB, notifier *notifications.Service) *Service {
	return &Service{db: db, notifier: notifier}
}

// CreatePost inserts a post and bumps the author's cached post count
func (s *Service) CreatePost(ctx context.Context, author *models.User, mediaURL, mediaType, caption, location string) (*models.Post, error) {
	post := models.Post{
		UserID:    author.ID,
		Username:  author.Username,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		Caption:   caption,
		Location:  location,
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", author.ID).
		UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump user post count",
			logger.WithUserID(author.ID), zap.Error(err))
	}

	return &post, nil
}

// HomeFeed returns non-video posts newest-first. The media-type filter
// runs in the database, not over a fetched superset.
func (s *Service) HomeFeed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("media_type <> ?", models.MediaTypeVideo).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load home feed: %w", err)
	}
	return posts, nil
}

// ReelsFeed returns video posts newest-first
func (s *Service) ReelsFeed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("media_type = ?", models.MediaTypeVideo).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reels feed: %w", err)
	}
	return posts, nil
}

// GetPost returns one post
func (s *Service) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return &post, nil
}

// Like records one like per (post, user) and bumps the cached counter.
// Liking twice returns ErrAlreadyLiked and changes nothing.
func (s *Service) Like(ctx context.Context, postID string, user *models.User) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	var existing models.PostLike
	err = s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, user.ID).
		First(&existing).Error
	if err == nil {
		return ErrAlreadyLiked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing like: %w", err)
	}

	like := models.PostLike{PostID: postID, UserID: user.ID}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		// Unique index catches the check-then-insert race; anything
		// else is a real failure, not a conflict
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("failed to store like: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump post like count",
			logger.WithPostID(postID), zap.Error(err))
	}

	s.notifier.Notify(ctx, notifications.Event{
		RecipientID: post.UserID,
		Type:        models.NotificationLike,
		ActorID:     user.ID,
		ActorName:   user.Username,
		Message:     fmt.Sprintf("%s liked your post", user.Username),
		TargetID:    postID,
		TargetType:  "post",
	})

	return nil
}

// Unlike removes a like and decrements the counter, never below zero
func (s *Service) Unlike(ctx context.Context, postID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotLiked
	}

	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND likes_count > 0", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
		logger.Log.Warn("Failed to drop post like count",
			logger.WithPostID(postID), zap.Error(err))
	}

	return nil
}

// AddComment appends a comment and bumps the cached counter
func (s *Service) AddComment(ctx context.Context, postID string, user *models.User, text string) (*models.PostComment, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.PostComment{
		PostID:   postID,
		UserID:   user.ID,
		Username: user.Username,
		Text:     text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump post comment count",
			logger.WithPostID(postID), zap.Error(err))
	}

	s.notifier.Notify(ctx, notifications.Event{
		RecipientID: post.UserID,
		Type:        models.NotificationComment,
		ActorID:     user.ID,
		ActorName:   user.Username,
		Message:     fmt.Sprintf("%s commented on your post", user.Username),
		TargetID:    postID,
		TargetType:  "post",
	})

	return &comment, nil
}

// Comments lists a post's comments oldest-first
func (s *Service) Comments(ctx context.Context, postID string) ([]models.PostComment, error) {
	var comments []models.PostComment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}

// ShareToStory republishes a post as a 24h story for the sharer,
// bumping the post's share counter
func (s *Service) ShareToStory(ctx context.Context, postID string, user *models.User) (*models.Story, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	story := models.Story{
		UserID:         user.ID,
		Username:       user.Username,
		MediaURL:       post.MediaURL,
		MediaType:      post.MediaType,
		Caption:        post.Caption,
		OriginalPostID: &post.ID,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
	if err := s.db.WithContext(ctx).Create(&story).Error; err != nil {
		return nil, fmt.Errorf("failed to share post to story: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("shares_count", gorm.Expr("shares_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump post share count",
			logger.WithPostID(postID), zap.Error(err))
	}

	s.notifier.Notify(ctx, notifications.Event{
		RecipientID: post.UserID,
		Type:        models.NotificationShare,
		ActorID:     user.ID,
		ActorName:   user.Username,
		Message:     fmt.Sprintf("%s shared your post to their story", user.Username),
		TargetID:    postID,
		TargetType:  "post",
	})

	return &story, nil
}

// PostsForUser returns a user's posts newest-first (profile grid)
func (s *Service) PostsForUser(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user posts: %w", err)
	}
	return posts, nil
}
