package models

import (
	"sort"
	"strings"
	"time"
)

// ConversationIDSeparator joins the two sorted participant IDs. User IDs are
// UUIDs, so the separator cannot occur inside an ID; DeriveConversationID
// still rejects IDs containing it.
const ConversationIDSeparator = "_"

// MaxImagePayloadBytes caps the encoded inline image payload of a message.
// Kept well under the backing store's document limit so a write is never
// silently truncated.
const MaxImagePayloadBytes = 1 << 20 // 1 MiB

// ImagePreviewPlaceholder is the summary preview text for image-only messages.
const ImagePreviewPlaceholder = "[image]"

// DeriveConversationID returns the canonical conversation identifier for an
// unordered pair of user IDs: the two IDs sorted lexicographically and joined
// with ConversationIDSeparator. Commutative and deterministic; a == b yields
// a valid self-conversation ID.
func DeriveConversationID(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", NewValidationError("participant IDs are required")
	}
	if strings.Contains(a, ConversationIDSeparator) || strings.Contains(b, ConversationIDSeparator) {
		return "", NewValidationError("participant IDs must not contain " + ConversationIDSeparator)
	}
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + ConversationIDSeparator + pair[1], nil
}

// Message is one entry in a conversation's append-only log. The ID is
// assigned by the store on append and breaks ties between messages with an
// identical timestamp, so render order is stable. Messages are immutable
// after creation.
type Message struct {
	ID             uint64 `gorm:"primaryKey" json:"id"`
	ConversationID string `gorm:"not null;index;size:80" json:"conversation_id"`
	SenderID       string `gorm:"not null;index;size:36" json:"sender_id"`
	Sender         *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Text           string `gorm:"type:text" json:"text"`
	ImagePayload   string `gorm:"type:text" json:"image_payload,omitempty"`
	// ThumbnailPayload is a base64 webp preview derived from ImagePayload
	// at send time, small enough for conversation list rendering.
	ThumbnailPayload string    `gorm:"type:text" json:"thumbnail_payload,omitempty"`
	ParticipantLow   string    `gorm:"size:36;index" json:"participant_low"`
	ParticipantHi    string    `gorm:"size:36;index" json:"participant_hi"`
	CreatedAt        time.Time `json:"created_at"`
}

// Preview returns the summary preview text for the message.
func (m *Message) Preview() string {
	if m.Text == "" && m.ImagePayload != "" {
		return ImagePreviewPlaceholder
	}
	return m.Text
}

// ConversationSummary is the mutable per-conversation record: last message
// preview and timestamp, overwritten on every send. Unread counters live in
// ConversationUnread rows so each participant's counter is an independently
// writable field.
type ConversationSummary struct {
	ConversationID string    `gorm:"primaryKey;size:80" json:"conversation_id"`
	ParticipantLow string    `gorm:"size:36;index" json:"participant_low"`
	ParticipantHi  string    `gorm:"size:36;index" json:"participant_hi"`
	LastMessage    string    `json:"last_message"`
	LastSenderID   string    `gorm:"size:36" json:"last_sender_id"`
	LastMessageAt  time.Time `json:"last_message_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationUnread tracks one participant's unread counter for one
// conversation. Incremented for the recipient on every send, reset to zero
// when that participant opens the conversation. Best-effort under concurrent
// retries; never negative.
type ConversationUnread struct {
	ConversationID string `gorm:"primaryKey;size:80" json:"conversation_id"`
	UserID         string `gorm:"primaryKey;size:36" json:"user_id"`
	UnreadCount    int    `gorm:"default:0" json:"unread_count"`
}
