package repository

import (
	"context"
	"errors"
	"time"

	"shelftalk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for conversation data operations.
// Messages form an append-only log per conversation; summaries and unread
// counters are the mutable bookkeeping beside it.
type ChatRepository interface {
	AppendMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, convID string, limit, offset int) ([]*models.Message, error)
	TouchOnSend(ctx context.Context, convID, senderID, recipientID, preview string, at time.Time) error
	ResetUnread(ctx context.Context, convID, userID string) error
	GetSummary(ctx context.Context, convID string) (*models.ConversationSummary, error)
	GetUnreadCount(ctx context.Context, convID, userID string) (int, error)
	GetUserSummaries(ctx context.Context, userID string) ([]*models.ConversationSummary, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// AppendMessage inserts the message. The store assigns the log ID and the
// creation timestamp, so ordering is consistent across writers with skewed
// clocks.
func (r *chatRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetMessages returns the conversation's messages oldest first. Ties on the
// timestamp are broken by log-assigned ID so the render order is stable.
func (r *chatRepository) GetMessages(ctx context.Context, convID string, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Preload("Sender").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// TouchOnSend upserts the conversation summary and bumps the recipient's
// unread counter with a field-level increment. Create-if-absent on both rows
// so the first message in a brand-new conversation never fails.
func (r *chatRepository) TouchOnSend(ctx context.Context, convID, senderID, recipientID, preview string, at time.Time) error {
	low, hi := senderID, recipientID
	if hi < low {
		low, hi = hi, low
	}

	summary := models.ConversationSummary{
		ConversationID: convID,
		ParticipantLow: low,
		ParticipantHi:  hi,
		LastMessage:    preview,
		LastSenderID:   senderID,
		LastMessageAt:  at,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_message":    preview,
			"last_sender_id":  senderID,
			"last_message_at": at,
		}),
	}).Create(&summary).Error
	if err != nil {
		return err
	}

	unread := models.ConversationUnread{
		ConversationID: convID,
		UserID:         recipientID,
		UnreadCount:    1,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"unread_count": gorm.Expr("conversation_unreads.unread_count + 1"),
		}),
	}).Create(&unread).Error
}

// ResetUnread zeroes the participant's counter. Idempotent: resetting an
// already-zero counter is a no-op.
func (r *chatRepository) ResetUnread(ctx context.Context, convID, userID string) error {
	unread := models.ConversationUnread{
		ConversationID: convID,
		UserID:         userID,
		UnreadCount:    0,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"unread_count": 0,
		}),
	}).Create(&unread).Error
}

func (r *chatRepository) GetSummary(ctx context.Context, convID string) (*models.ConversationSummary, error) {
	var summary models.ConversationSummary
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetUnreadCount returns the participant's counter; a missing row reads as 0.
func (r *chatRepository) GetUnreadCount(ctx context.Context, convID, userID string) (int, error) {
	var unread models.ConversationUnread
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		First(&unread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return unread.UnreadCount, nil
}

// GetUserSummaries lists the user's conversations, most recent message first.
func (r *chatRepository) GetUserSummaries(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	var summaries []*models.ConversationSummary
	err := r.db.WithContext(ctx).
		Where("participant_low = ? OR participant_hi = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&summaries).Error
	return summaries, err
}
