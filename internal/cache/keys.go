package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%s"
	BookKeyPrefix         = "book:%d"
	ConversationKeyPrefix = "conv:%s"
	UnreadKeyPrefix       = "conv:%s:unread:%s"
	SummariesKeyPrefix    = "user:%s:conversations"
)

const (
	UserTTL         = 5 * time.Minute
	BookTTL         = 30 * time.Minute
	ConversationTTL = 2 * time.Minute
	UnreadTTL       = 2 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BookKey(bookID uint) string {
	return fmt.Sprintf(BookKeyPrefix, bookID)
}

func ConversationKey(conversationID string) string {
	return fmt.Sprintf(ConversationKeyPrefix, conversationID)
}

func UnreadKey(conversationID, userID string) string {
	return fmt.Sprintf(UnreadKeyPrefix, conversationID, userID)
}

func SummariesKey(userID string) string {
	return fmt.Sprintf(SummariesKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateBook(ctx context.Context, bookID uint) {
	Invalidate(ctx, BookKey(bookID))
}

// InvalidateConversation drops the cached summary, both participants'
// unread counters and both participants' conversation lists.
func InvalidateConversation(ctx context.Context, conversationID string, participants ...string) {
	Invalidate(ctx, ConversationKey(conversationID))
	for _, userID := range participants {
		Invalidate(ctx, UnreadKey(conversationID, userID))
		Invalidate(ctx, SummariesKey(userID))
	}
}
