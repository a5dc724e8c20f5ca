package notifications

import (
	"context"
	"log"
	"runtime/debug"
	"strings"

	"github.com/redis/go-redis/v9"
)

const chatChannelPrefix = "chat:conv:"

// Notifier publishes conversation events into Redis channels so every server
// instance sees sends made on any instance.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishChatMessage publishes a chat event payload to a conversation channel.
func (n *Notifier) PublishChatMessage(ctx context.Context, conversationID string, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, chatChannelPrefix+conversationID, payload).Err()
}

// StartChatSubscriber subscribes to the conversation channel pattern and
// calls onMessage with the conversation ID and payload for each event.
// Reconnects after transient disconnects are handled by go-redis; the
// goroutine exits when ctx is cancelled.
func (n *Notifier) StartChatSubscriber(
	ctx context.Context, onMessage func(conversationID string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, chatChannelPrefix+"*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in chat subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					convID := strings.TrimPrefix(msg.Channel, chatChannelPrefix)
					onMessage(convID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
