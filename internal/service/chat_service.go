// Package service provides application business logic (chat, books, users, moderation).
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"shelftalk/internal/cache"
	"shelftalk/internal/middleware"
	"shelftalk/internal/models"
	"shelftalk/internal/notifications"
	"shelftalk/internal/repository"
)

// ChatNotifier publishes conversation events for cross-instance fanout.
type ChatNotifier interface {
	PublishChatMessage(ctx context.Context, conversationID string, payload string) error
}

// ChatService provides direct-message conversation business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	hub      *notifications.ChatHub
	notifier ChatNotifier
	images   *ImageService
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	SenderID     string
	RecipientID  string
	Text         string
	ImagePayload string
}

// ConversationView pairs a conversation summary with the requesting user's
// unread counter and the other participant's ID.
type ConversationView struct {
	Summary     *models.ConversationSummary `json:"summary"`
	OtherUserID string                      `json:"other_user_id"`
	UnreadCount int                         `json:"unread_count"`
}

// NewChatService returns a new ChatService. hub and notifier may be nil
// (messages are then persisted without live fanout).
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	hub *notifications.ChatHub,
	notifier ChatNotifier,
) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		hub:      hub,
		notifier: notifier,
		images:   NewImageService(),
	}
}

const maxMessageTextLen = 10000 // 10K characters

// SendMessage appends a message to the sender/recipient conversation log and
// updates the conversation summary. The conversation ID is always recomputed
// from the two participant IDs, never taken from the client.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.Text == "" && in.ImagePayload == "" {
		return nil, models.NewValidationError("Message text or image is required")
	}
	if len(in.Text) > maxMessageTextLen {
		return nil, models.NewValidationError("Message text too long (max 10000 characters)")
	}
	// Image validation and thumbnailing run before any store write so a
	// bad or oversized payload costs nothing.
	var thumbnail string
	if in.ImagePayload != "" {
		decoded, err := s.images.ValidatePayload(in.ImagePayload)
		if err != nil {
			return nil, err
		}
		thumbnail, err = s.images.BuildPreviewThumbnail(decoded)
		if err != nil {
			// The full image is valid, the message goes out without a
			// preview.
			slog.WarnContext(ctx, "thumbnail encode failed", "sender_id", in.SenderID, "err", err)
			thumbnail = ""
		}
	}

	convID, err := models.DeriveConversationID(in.SenderID, in.RecipientID)
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if sender == nil {
		return nil, models.NewUnauthorizedError("Unknown sender")
	}
	if sender.IsBanned {
		return nil, models.NewPermissionError("Your account is banned from sending messages")
	}

	if in.RecipientID != in.SenderID {
		recipient, err := s.userRepo.GetByID(ctx, in.RecipientID)
		if err != nil {
			return nil, classifyStoreError(err)
		}
		if recipient == nil {
			return nil, models.NewNotFoundError("User", in.RecipientID)
		}
	}

	low, hi := in.SenderID, in.RecipientID
	if hi < low {
		low, hi = hi, low
	}
	message := &models.Message{
		ConversationID:   convID,
		SenderID:         in.SenderID,
		Text:             in.Text,
		ImagePayload:     in.ImagePayload,
		ThumbnailPayload: thumbnail,
		ParticipantLow:   low,
		ParticipantHi:    hi,
	}
	if err := s.chatRepo.AppendMessage(ctx, message); err != nil {
		return nil, classifyStoreError(err)
	}

	// The message is durable from here on. A summary failure leaves a
	// valid-but-stale state (unread may undercount), so it is logged and
	// the send still succeeds.
	if err := s.chatRepo.TouchOnSend(ctx, convID, in.SenderID, in.RecipientID, message.Preview(), message.CreatedAt); err != nil {
		slog.WarnContext(ctx, "conversation summary update failed after append",
			"conversation_id", convID, "message_id", message.ID, "err", err)
	}

	message.Sender = sender

	kind := "text"
	if in.ImagePayload != "" {
		kind = "image"
	}
	middleware.MessagesSent.WithLabelValues(kind).Inc()

	cache.InvalidateConversation(ctx, convID, in.SenderID, in.RecipientID)
	s.fanOut(ctx, message)

	return message, nil
}

// fanOut delivers the message to in-process subscribers and, via Redis, to
// other instances. Best effort; delivery failures never fail the send.
func (s *ChatService) fanOut(ctx context.Context, message *models.Message) {
	if s.hub != nil {
		s.hub.PublishMessage(*message)
	}
	if s.notifier != nil {
		payload, err := json.Marshal(notifications.ChatEvent{
			Type:           "message",
			ConversationID: message.ConversationID,
			UserID:         message.SenderID,
			Payload:        message,
		})
		if err != nil {
			slog.WarnContext(ctx, "marshal chat event failed", "message_id", message.ID, "err", err)
			return
		}
		if err := s.notifier.PublishChatMessage(ctx, message.ConversationID, string(payload)); err != nil {
			slog.WarnContext(ctx, "publish chat event failed",
				"conversation_id", message.ConversationID, "err", err)
		}
	}
}

// GetMessages returns the conversation between the requester and the other
// user, oldest first.
func (s *ChatService) GetMessages(ctx context.Context, userID, otherUserID string, limit, offset int) ([]*models.Message, error) {
	convID, err := models.DeriveConversationID(userID, otherUserID)
	if err != nil {
		return nil, err
	}
	limit, offset = clampPagination(limit, offset)
	messages, err := s.chatRepo.GetMessages(ctx, convID, limit, offset)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	return messages, nil
}

// MarkConversationRead zeroes the requester's unread counter for the
// conversation with the other user. Idempotent.
func (s *ChatService) MarkConversationRead(ctx context.Context, userID, otherUserID string) error {
	convID, err := models.DeriveConversationID(userID, otherUserID)
	if err != nil {
		return err
	}
	if err := s.chatRepo.ResetUnread(ctx, convID, userID); err != nil {
		return classifyStoreError(err)
	}
	cache.Invalidate(ctx, cache.UnreadKey(convID, userID))
	return nil
}

// GetConversations lists the user's conversations, most recent first, each
// with the user's own unread counter attached.
func (s *ChatService) GetConversations(ctx context.Context, userID string) ([]ConversationView, error) {
	summaries, err := s.chatRepo.GetUserSummaries(ctx, userID)
	if err != nil {
		return nil, classifyStoreError(err)
	}

	views := make([]ConversationView, 0, len(summaries))
	for _, summary := range summaries {
		other := summary.ParticipantLow
		if other == userID {
			other = summary.ParticipantHi
		}
		unread, err := s.chatRepo.GetUnreadCount(ctx, summary.ConversationID, userID)
		if err != nil {
			return nil, classifyStoreError(err)
		}
		views = append(views, ConversationView{
			Summary:     summary,
			OtherUserID: other,
			UnreadCount: unread,
		})
	}
	return views, nil
}

// GetUnreadCount returns the requester's unread counter for one conversation.
func (s *ChatService) GetUnreadCount(ctx context.Context, userID, otherUserID string) (int, error) {
	convID, err := models.DeriveConversationID(userID, otherUserID)
	if err != nil {
		return 0, err
	}
	count, err := s.chatRepo.GetUnreadCount(ctx, convID, userID)
	if err != nil {
		return 0, classifyStoreError(err)
	}
	return count, nil
}

// Subscribe attaches a live message stream for the conversation between the
// two users. Caller must Cancel the subscription when done.
func (s *ChatService) Subscribe(userID, otherUserID string) (*notifications.Subscription, error) {
	convID, err := models.DeriveConversationID(userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if s.hub == nil {
		return nil, models.NewBackendError(errors.New("live delivery is not available"))
	}
	return s.hub.Subscribe(convID), nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampPagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// classifyStoreError maps raw store failures onto the service error
// taxonomy. AppErrors pass through; backend-side oversized-value rejections
// surface as PAYLOAD_TOO_LARGE; everything else is a transient backend error
// the caller may retry.
func classifyStoreError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "too large") || strings.Contains(msg, "too long") {
		return models.NewPayloadTooLargeError("Message payload exceeds backend limits")
	}
	return models.NewBackendError(err)
}
