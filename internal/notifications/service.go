package notifications

import (
	"context"
	"fmt"

	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service creates and reads activity notifications. Creation is
// best-effort: a failed insert is logged and never propagated to the
// action that triggered it.
type Service struct {
	db *gorm.DB
}

// NewService creates a notification service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Event describes an activity worth notifying the recipient about
type Event struct {
	RecipientID string
	Type        string
	ActorID     string
	ActorName   string
	Message     string
	TargetID    string
	TargetType  string
}

// Notify records a notification without surfacing failures. Self-
// notifications are dropped.
func (s *Service) Notify(ctx context.Context, ev Event) {
	if ev.RecipientID == "" || ev.RecipientID == ev.ActorID {
		return
	}

	n := models.Notification{
		UserID:     ev.RecipientID,
		Type:       ev.Type,
		ActorID:    ev.ActorID,
		ActorName:  ev.ActorName,
		Message:    ev.Message,
		TargetID:   ev.TargetID,
		TargetType: ev.TargetType,
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		logger.Log.Warn("Failed to create notification",
			zap.String("type", ev.Type),
			zap.String("recipient", ev.RecipientID),
			zap.Error(err),
		)
	}
}

// List returns the newest notifications for a user
func (s *Service) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&count).Error
	return count, err
}

// MarkAllRead flags every notification for the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error
}

// DeleteForTarget removes notifications that point at a deleted post or
// story. Best-effort; callers log and continue on error.
func (s *Service) DeleteForTarget(ctx context.Context, targetID string) error {
	return s.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Delete(&models.Notification{}).Error
}
