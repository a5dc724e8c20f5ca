package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"shelftalk/internal/models"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12

	// Buffer size for in-process subscription streams.
	subscriptionBuffer = 64
)

// ChatHub manages real-time delivery for conversations. It is
// conversation-centric: websocket clients join conversations, and in-process
// consumers attach cancellable Subscription streams.
type ChatHub struct {
	mu sync.RWMutex

	// conversationID -> userID -> Client
	conversations map[string]map[string]*Client

	// userID -> set of conversationIDs they're actively viewing
	userActiveConvs map[string]map[string]struct{}

	// userID -> set of active Clients (multi-device support)
	userConns map[string]map[*Client]bool

	// conversationID -> in-process subscriptions
	subs map[string]map[*Subscription]struct{}
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// ChatEvent is the wire envelope broadcast to conversation members.
type ChatEvent struct {
	Type           string      `json:"type"` // "message", "read", "joined", "error"
	ConversationID string      `json:"conversation_id"`
	UserID         string      `json:"user_id,omitempty"`
	Payload        interface{} `json:"payload"`
}

// NewChatHub creates a new ChatHub instance
func NewChatHub() *ChatHub {
	return &ChatHub{
		conversations:   make(map[string]map[string]*Client),
		userActiveConvs: make(map[string]map[string]struct{}),
		userConns:       make(map[string]map[*Client]bool),
		subs:            make(map[string]map[*Subscription]struct{}),
	}
}

// Subscription is a cancellable, ordered stream of one conversation's
// messages. Delivery is at-least-once: after a reconnect the same message ID
// may be seen again, so consumers key on it.
type Subscription struct {
	// C receives messages in log order.
	C <-chan models.Message

	ch     chan models.Message
	hub    *ChatHub
	convID string
	once   sync.Once
}

// Cancel stops delivery and releases the subscription. Safe to call more
// than once. No further sends happen after Cancel returns.
//
// The channel is closed while holding the hub lock. PublishMessage only
// sends while holding the read side, so a close can never overlap a send.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if set, ok := s.hub.subs[s.convID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.convID)
			}
		}
		close(s.ch)
		s.hub.mu.Unlock()
	})
}

// Subscribe attaches an ordered message stream for the conversation.
func (h *ChatHub) Subscribe(conversationID string) *Subscription {
	ch := make(chan models.Message, subscriptionBuffer)
	sub := &Subscription{C: ch, ch: ch, hub: h, convID: conversationID}

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[*Subscription]struct{})
	}
	h.subs[conversationID][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// PublishMessage fans a freshly appended message out to every in-process
// subscription and every websocket client joined to the conversation.
// Slow consumers are skipped rather than stalling delivery to others.
func (h *ChatHub) PublishMessage(msg models.Message) {
	event := ChatEvent{
		Type:           "message",
		ConversationID: msg.ConversationID,
		UserID:         msg.SenderID,
		Payload:        msg,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ChatHub: marshal message %d: %v", msg.ID, err)
		return
	}

	// Subscription sends happen under the read lock so they cannot overlap
	// a Cancel closing the channel. Both sides are non-blocking, so the
	// lock is never held across a stall.
	h.mu.RLock()
	for sub := range h.subs[msg.ConversationID] {
		select {
		case sub.ch <- msg:
		default:
			log.Printf("ChatHub: dropping message %d for slow subscriber on %s", msg.ID, msg.ConversationID)
		}
	}
	clients := make([]*Client, 0, len(h.conversations[msg.ConversationID]))
	for _, client := range h.conversations[msg.ConversationID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.TrySend(payload)
	}
}

// BroadcastToConversation sends a raw payload to every websocket client
// joined to the conversation. Used by the cross-instance Redis relay.
func (h *ChatHub) BroadcastToConversation(conversationID string, payload []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.conversations[conversationID]))
	for _, client := range h.conversations[conversationID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.TrySend(payload)
	}
}

// Register registers a user's websocket connection. Returns Client or error if limits exceeded.
func (h *ChatHub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]bool)
	}

	if len(h.userConns[userID]) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, fmt.Errorf("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = true
	h.mu.Unlock()

	return client, nil
}

// UnregisterClient removes a user's websocket connection and cleans up all
// their conversation subscriptions once the last device disconnects.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) > 0 {
		return
	}
	delete(h.userConns, client.UserID)

	if convs, ok := h.userActiveConvs[client.UserID]; ok {
		for convID := range convs {
			if users, ok := h.conversations[convID]; ok {
				delete(users, client.UserID)
				if len(users) == 0 {
					delete(h.conversations, convID)
				}
			}
		}
		delete(h.userActiveConvs, client.UserID)
	}
}

// JoinConversation marks the user as actively viewing the conversation.
func (h *ChatHub) JoinConversation(userID, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.userConns[userID]
	if !ok || len(clients) == 0 {
		return
	}
	// Any live client will do for conversation delivery.
	var client *Client
	for c := range clients {
		client = c
		break
	}

	if h.conversations[conversationID] == nil {
		h.conversations[conversationID] = make(map[string]*Client)
	}
	h.conversations[conversationID][userID] = client

	if h.userActiveConvs[userID] == nil {
		h.userActiveConvs[userID] = make(map[string]struct{})
	}
	h.userActiveConvs[userID][conversationID] = struct{}{}
}

// LeaveConversation removes the user from the conversation's delivery set.
func (h *ChatHub) LeaveConversation(userID, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if users, ok := h.conversations[conversationID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.conversations, conversationID)
		}
	}
	if convs, ok := h.userActiveConvs[userID]; ok {
		delete(convs, conversationID)
		if len(convs) == 0 {
			delete(h.userActiveConvs, userID)
		}
	}
}

// StartWiring connects the hub to Redis pub/sub so sends on other instances
// reach this instance's websocket clients. In-process subscriptions are fed
// locally by PublishMessage and are not re-fed from Redis.
func (h *ChatHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartChatSubscriber(ctx, func(conversationID, payload string) {
		h.BroadcastToConversation(conversationID, []byte(payload))
	})
}

// Shutdown closes every websocket connection and clears the hub's state.
// In-process subscriptions are cancelled so consumers observe a closed
// channel rather than a silent stall.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	var subs []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown","message":"Server is shutting down"}`)); err != nil {
				log.Printf("failed to write shutdown message for user %s: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %s: %v", userID, err)
			}
		}
	}
	h.conversations = make(map[string]map[string]*Client)
	h.userActiveConvs = make(map[string]map[string]struct{})
	h.userConns = make(map[string]map[*Client]bool)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return nil
}

// IsViewing reports whether the user currently has the conversation open.
func (h *ChatHub) IsViewing(userID, conversationID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.userActiveConvs[userID][conversationID]
	return ok
}
