package stories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"github.com/timepass/backend/internal/notifications"
	"github.com/timepass/backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors returned by story operations
var (
	ErrNotFound     = errors.New("story not found")
	ErrNotOwner     = errors.New("story does not belong to requester")
	ErrAlreadyLiked = errors.New("story already liked")
)

// deleteTimeout bounds the whole multi-step delete operation
const deleteTimeout = 15 * time.Second

// Service implements the story lifecycle: creation with a 24h window,
// per-viewer read tracking, likes, comments and owner-only deletion.
// Expired stories are filtered from every read but stay in the table
// until their owner deletes them.
type Service struct {
	db       *gorm.DB
	sink     storage.MediaSink
	notifier *notifications.Service
}

// NewService creates a story service
func NewService(db *gorm.DB, sink storage.MediaSink, notifier *notifications.Service) *Service {
	return &Service{db: db, sink: sink, notifier: notifier}
}

// UserStories groups one author's active stories for the stories bar.
// The requesting user is always the first entry, with or without stories.
type UserStories struct {
	UserID     string         `json:"user_id"`
	Username   string         `json:"username"`
	AvatarURL  string         `json:"avatar_url"`
	HasStories bool           `json:"has_stories"`
	Stories    []models.Story `json:"stories"`
}

// Create inserts a story expiring 24 hours out. When the fresh row is
// not immediately readable (replica lag), one delayed re-fetch covers
// the gap before giving up.
func (s *Service) Create(ctx context.Context, author *models.User, mediaURL, mediaType, caption string, originalPostID *string) (*models.Story, error) {
	story := models.Story{
		UserID:         author.ID,
		Username:       author.Username,
		MediaURL:       mediaURL,
		MediaType:      mediaType,
		Caption:        caption,
		OriginalPostID: originalPostID,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}

	if err := s.db.WithContext(ctx).Create(&story).Error; err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	var created models.Story
	err := s.db.WithContext(ctx).First(&created, "id = ?", story.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		time.Sleep(500 * time.Millisecond)
		err = s.db.WithContext(ctx).First(&created, "id = ?", story.ID).Error
	}
	if err != nil {
		return nil, fmt.Errorf("story created but not readable: %w", err)
	}

	return &created, nil
}

// ActiveForViewer builds the stories bar: the viewer first (always
// present, possibly with zero stories), then every followed author who
// has at least one active story, ordered by their newest story.
func (s *Service) ActiveForViewer(ctx context.Context, viewer *models.User) ([]UserStories, error) {
	authorIDs := append([]string{viewer.ID}, viewer.Following...)

	var active []models.Story
	err := s.db.WithContext(ctx).
		Where("user_id IN ? AND expires_at > ?", authorIDs, time.Now().UTC()).
		Order("created_at ASC").
		Find(&active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active stories: %w", err)
	}

	byAuthor := make(map[string][]models.Story)
	for _, st := range active {
		byAuthor[st.UserID] = append(byAuthor[st.UserID], st)
	}

	own := byAuthor[viewer.ID]
	result := []UserStories{{
		UserID:     viewer.ID,
		Username:   viewer.Username,
		AvatarURL:  viewer.AvatarURL,
		HasStories: len(own) > 0,
		Stories:    own,
	}}

	otherIDs := make([]string, 0, len(byAuthor))
	for authorID := range byAuthor {
		if authorID != viewer.ID {
			otherIDs = append(otherIDs, authorID)
		}
	}

	// Story rows only carry the author's name; avatars come from users
	avatars := make(map[string]string, len(otherIDs))
	if len(otherIDs) > 0 {
		var authors []models.User
		if err := s.db.WithContext(ctx).
			Select("id", "avatar_url").
			Where("id IN ?", otherIDs).
			Find(&authors).Error; err != nil {
			return nil, fmt.Errorf("failed to load story authors: %w", err)
		}
		for _, author := range authors {
			avatars[author.ID] = author.AvatarURL
		}
	}

	others := make([]UserStories, 0, len(otherIDs))
	for _, authorID := range otherIDs {
		group := byAuthor[authorID]
		others = append(others, UserStories{
			UserID:     authorID,
			Username:   group[0].Username,
			AvatarURL:  avatars[authorID],
			HasStories: true,
			Stories:    group,
		})
	}

	// Newest author first
	sort.Slice(others, func(i, j int) bool {
		return newestCreatedAt(others[i]).After(newestCreatedAt(others[j]))
	})

	return append(result, others...), nil
}

func newestCreatedAt(u UserStories) time.Time {
	if len(u.Stories) == 0 {
		return time.Time{}
	}
	return u.Stories[len(u.Stories)-1].CreatedAt
}

// ForUser returns a user's active stories oldest-first, the order the
// viewer plays them in
func (s *Service) ForUser(ctx context.Context, userID string) ([]models.Story, error) {
	var active []models.Story
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now().UTC()).
		Order("created_at ASC").
		Find(&active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	return active, nil
}

// Get returns one active story
func (s *Service) Get(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", storyID, time.Now().UTC()).
		First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	return &story, nil
}

// RecordView stores at most one view per (story, viewer) and bumps the
// cached counter on first sight. Authors viewing their own story leave
// no trace.
func (s *Service) RecordView(ctx context.Context, storyID string, viewer *models.User) error {
	story, err := s.Get(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID == viewer.ID {
		return nil
	}

	var existing models.StoryView
	err = s.db.WithContext(ctx).
		Where("story_id = ? AND viewer_id = ?", storyID, viewer.ID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing view: %w", err)
	}

	view := models.StoryView{StoryID: storyID, ViewerID: viewer.ID}
	if err := s.db.WithContext(ctx).Create(&view).Error; err != nil {
		// The unique index catches the race between check and insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to record view: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Story{}).
		Where("id = ?", storyID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump story view count",
			logger.WithStoryID(storyID), zap.Error(err))
	}

	s.notifier.Notify(ctx, notifications.Event{
		RecipientID: story.UserID,
		Type:        models.NotificationStoryView,
		ActorID:     viewer.ID,
		ActorName:   viewer.Username,
		Message:     fmt.Sprintf("%s viewed your story", viewer.Username),
		TargetID:    storyID,
		TargetType:  "story",
	})

	return nil
}

// RecordLike stores at most one like per (story, user). A repeat like
// returns ErrAlreadyLiked and changes nothing.
func (s *Service) RecordLike(ctx context.Context, storyID string, user *models.User) error {
	story, err := s.Get(ctx, storyID)
	if err != nil {
		return err
	}

	var existing models.StoryLike
	err = s.db.WithContext(ctx).
		Where("story_id = ? AND user_id = ?", storyID, user.ID).
		First(&existing).Error
	if err == nil {
		return ErrAlreadyLiked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing like: %w", err)
	}

	like := models.StoryLike{StoryID: storyID, UserID: user.ID}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		// The unique index catches the race between check and insert;
		// anything else is a real failure, not a conflict
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("failed to store like: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Story{}).
		Where("id = ?", storyID).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump story like count",
			logger.WithStoryID(storyID), zap.Error(err))
	}

	s.notifier.Notify(ctx, notifications.Event{
		RecipientID: story.UserID,
		Type:        models.NotificationStoryLike,
		ActorID:     user.ID,
		ActorName:   user.Username,
		Message:     fmt.Sprintf("%s liked your story", user.Username),
		TargetID:    storyID,
		TargetType:  "story",
	})

	return nil
}

// AddComment appends a comment to an active story
func (s *Service) AddComment(ctx context.Context, storyID string, user *models.User, text string) (*models.StoryComment, error) {
	story, err := s.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}

	comment := models.StoryComment{
		StoryID:  storyID,
		UserID:   user.ID,
		Username: user.Username,
		Text:     text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.notifier.Notify(ctx, notifications.Event{
		RecipientID: story.UserID,
		Type:        models.NotificationStoryComment,
		ActorID:     user.ID,
		ActorName:   user.Username,
		Message:     fmt.Sprintf("%s commented on your story", user.Username),
		TargetID:    storyID,
		TargetType:  "story",
	})

	return &comment, nil
}

// Comments lists a story's comments oldest-first
func (s *Service) Comments(ctx context.Context, storyID string) ([]models.StoryComment, error) {
	var comments []models.StoryComment
	err := s.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}

// Viewers lists who has seen a story, newest first. Only the owner may
// call this.
func (s *Service) Viewers(ctx context.Context, storyID, requesterID string) ([]models.StoryView, error) {
	var story models.Story
	err := s.db.WithContext(ctx).First(&story, "id = ?", storyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story.UserID != requesterID {
		return nil, ErrNotOwner
	}

	var views []models.StoryView
	err = s.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("created_at DESC").
		Find(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load viewers: %w", err)
	}
	return views, nil
}

// Delete removes a story its requester owns. Subordinate records and
// the media blob are cleaned up best-effort; only the story row delete
// itself can fail the operation. The whole sequence is bounded by a
// 15 second timeout.
func (s *Service) Delete(ctx context.Context, storyID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	var story models.Story
	err := s.db.WithContext(ctx).First(&story, "id = ?", storyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load story: %w", err)
	}
	if story.UserID != requesterID {
		return ErrNotOwner
	}

	// Subordinate cleanup is best-effort: orphaned rows are invisible
	// behind the deleted story and reaped later.
	if err := s.db.WithContext(ctx).Where("story_id = ?", storyID).Delete(&models.StoryView{}).Error; err != nil {
		logger.Log.Warn("Failed to delete story views", logger.WithStoryID(storyID), zap.Error(err))
	}
	if err := s.db.WithContext(ctx).Where("story_id = ?", storyID).Delete(&models.StoryLike{}).Error; err != nil {
		logger.Log.Warn("Failed to delete story likes", logger.WithStoryID(storyID), zap.Error(err))
	}
	if err := s.db.WithContext(ctx).Where("story_id = ?", storyID).Delete(&models.StoryComment{}).Error; err != nil {
		logger.Log.Warn("Failed to delete story comments", logger.WithStoryID(storyID), zap.Error(err))
	}

	// The story row is authoritative: failure here aborts the delete
	if err := s.db.WithContext(ctx).Delete(&models.Story{}, "id = ?", storyID).Error; err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}

	// Blobs on a host we don't control are left alone
	if s.sink != nil && story.MediaURL != "" && s.sink.Owns(story.MediaURL) {
		if err := s.sink.Delete(ctx, story.MediaURL); err != nil {
			logger.Log.Warn("Failed to delete story media blob",
				logger.WithStoryID(storyID), zap.String("url", story.MediaURL), zap.Error(err))
		}
	}

	if err := s.notifier.DeleteForTarget(ctx, storyID); err != nil {
		logger.Log.Warn("Failed to delete story notifications", logger.WithStoryID(storyID), zap.Error(err))
	}

	return nil
}
