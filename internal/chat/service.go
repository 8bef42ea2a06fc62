package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors returned by chat operations
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a conversation participant")
)

// Service implements two-party messaging with per-participant unread
// counters denormalized onto the conversation row.
type Service struct {
	db *gorm.DB
}

// NewService creates a chat service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// OpenConversation finds or creates the conversation between two users
func (s *Service) OpenConversation(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	if userID == otherID {
		return nil, fmt.Errorf("cannot open a conversation with yourself")
	}

	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("participants @> ARRAY[?]::text[] AND participants @> ARRAY[?]::text[]", userID, otherID).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	conv = models.Conversation{
		Participants: models.StringArray{userID, otherID},
		UnreadCounts: models.UnreadCounts{userID: 0, otherID: 0},
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

// Conversations lists a user's conversations, most recent activity first
func (s *Service) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("participants @> ARRAY[?]::text[]", userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// Send appends a message and updates the conversation preview and the
// receiver's unread counter. The two writes are not atomic: a crash in
// between can leave the counter behind by one, which the receiver's
// next MarkRead resets. Accepted trade-off for avoiding a transaction
// on the hot path.
func (s *Service) Send(ctx context.Context, conversationID string, sender *models.User, text string) (*models.Message, error) {
	conv, err := s.get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Participants.Contains(sender.ID) {
		return nil, ErrNotParticipant
	}

	receiverID := conv.OtherParticipant(sender.ID)

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		ReceiverID:     receiverID,
		Text:           text,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	counts := conv.UnreadCounts
	if counts == nil {
		counts = models.UnreadCounts{}
	}
	counts[receiverID]++

	err = s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":        text,
			"last_message_sender": sender.ID,
			"last_message_at":     time.Now().UTC(),
			"unread_counts":       counts,
		}).Error
	if err != nil {
		logger.Log.Warn("Message stored but conversation update failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
	}

	return &msg, nil
}

// Messages returns a conversation's messages oldest-first, restricted
// to participants
func (s *Service) Messages(ctx context.Context, conversationID, userID string, limit int) ([]models.Message, error) {
	conv, err := s.get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Participants.Contains(userID) {
		return nil, ErrNotParticipant
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var msgs []models.Message
	err = s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return msgs, nil
}

// MarkRead zeroes the reader's unread counter and flags their incoming
// messages as read
func (s *Service) MarkRead(ctx context.Context, conversationID, userID string) error {
	conv, err := s.get(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.Participants.Contains(userID) {
		return ErrNotParticipant
	}

	counts := conv.UnreadCounts
	if counts == nil {
		counts = models.UnreadCounts{}
	}
	counts[userID] = 0

	err = s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("unread_counts", counts).Error
	if err != nil {
		return fmt.Errorf("failed to reset unread counter: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND read = false", conversationID, userID).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	return nil
}

// TotalUnread sums the user's unread counters across conversations
func (s *Service) TotalUnread(ctx context.Context, userID string) (int, error) {
	convs, err := s.Conversations(ctx, userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range convs {
		total += c.UnreadCounts[userID]
	}
	return total, nil
}

func (s *Service) get(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).First(&conv, "id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return &conv, nil
}
