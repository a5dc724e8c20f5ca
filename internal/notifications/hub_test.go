package notifications

import (
	"sync"
	"testing"
	"time"

	"shelftalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_OrderedDelivery(t *testing.T) {
	hub := NewChatHub()
	convID, err := models.DeriveConversationID("alice", "bob")
	require.NoError(t, err)

	sub := hub.Subscribe(convID)
	defer sub.Cancel()

	for i := uint64(1); i <= 3; i++ {
		hub.PublishMessage(models.Message{ID: i, ConversationID: convID, SenderID: "alice", Text: "hi"})
	}

	for want := uint64(1); want <= 3; want++ {
		select {
		case msg := <-sub.C:
			assert.Equal(t, want, msg.ID)
			assert.Equal(t, convID, msg.ConversationID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", want)
		}
	}
}

func TestSubscribe_OnlyMatchingConversation(t *testing.T) {
	hub := NewChatHub()

	sub := hub.Subscribe("alice_bob")
	defer sub.Cancel()

	hub.PublishMessage(models.Message{ID: 1, ConversationID: "alice_carol", SenderID: "alice"})
	hub.PublishMessage(models.Message{ID: 2, ConversationID: "alice_bob", SenderID: "bob"})

	select {
	case msg := <-sub.C:
		assert.Equal(t, uint64(2), msg.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for matching message")
	}

	select {
	case msg, ok := <-sub.C:
		if ok {
			t.Fatalf("unexpected extra message %d", msg.ID)
		}
	default:
	}
}

func TestSubscription_Cancel(t *testing.T) {
	hub := NewChatHub()
	sub := hub.Subscribe("alice_bob")

	sub.Cancel()
	// Cancel is idempotent.
	sub.Cancel()

	hub.PublishMessage(models.Message{ID: 1, ConversationID: "alice_bob", SenderID: "alice"})

	// Channel is closed, nothing delivered after cancellation.
	msg, ok := <-sub.C
	assert.False(t, ok)
	assert.Zero(t, msg.ID)

	hub.mu.RLock()
	_, exists := hub.subs["alice_bob"]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestSubscription_ConcurrentCancelAndPublish(t *testing.T) {
	// A consumer disconnecting while a send is fanning out must not panic
	// with a send on a closed channel. Run under -race.
	hub := NewChatHub()
	convID := "alice_bob"

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		id := uint64(0)
		for {
			select {
			case <-done:
				return
			default:
				id++
				hub.PublishMessage(models.Message{ID: id, ConversationID: convID, SenderID: "alice"})
			}
		}
	}()

	for i := 0; i < 200; i++ {
		sub := hub.Subscribe(convID)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.Cancel()
		}()
	}

	close(done)
	wg.Wait()

	hub.mu.RLock()
	remaining := len(hub.subs[convID])
	hub.mu.RUnlock()
	assert.Zero(t, remaining)
}

func TestSubscribe_SlowConsumerDoesNotBlock(t *testing.T) {
	hub := NewChatHub()
	convID := "alice_bob"

	slow := hub.Subscribe(convID)
	defer slow.Cancel()
	fast := hub.Subscribe(convID)
	defer fast.Cancel()

	// Overflow the slow subscriber's buffer without draining it.
	for i := uint64(1); i <= subscriptionBuffer+10; i++ {
		hub.PublishMessage(models.Message{ID: i, ConversationID: convID, SenderID: "alice"})
	}

	// The fast subscriber still has a full buffer of in-order messages.
	drained := 0
	for {
		select {
		case msg := <-fast.C:
			drained++
			assert.Equal(t, uint64(drained), msg.ID)
			if drained == subscriptionBuffer {
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("drained only %d messages", drained)
		}
	}
}

func TestRegister_ConnectionLimit(t *testing.T) {
	hub := NewChatHub()

	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c, err := hub.Register("alice", nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}

	_, err := hub.Register("alice", nil)
	assert.Error(t, err)

	// Another user is unaffected.
	_, err = hub.Register("bob", nil)
	assert.NoError(t, err)

	hub.UnregisterClient(clients[0])
	_, err = hub.Register("alice", nil)
	assert.NoError(t, err)
}

func TestJoinLeaveConversation(t *testing.T) {
	hub := NewChatHub()

	client, err := hub.Register("alice", nil)
	require.NoError(t, err)

	// Joining requires a registered connection.
	hub.JoinConversation("bob", "alice_bob")
	assert.False(t, hub.IsViewing("bob", "alice_bob"))

	hub.JoinConversation("alice", "alice_bob")
	assert.True(t, hub.IsViewing("alice", "alice_bob"))

	hub.PublishMessage(models.Message{ID: 1, ConversationID: "alice_bob", SenderID: "bob", Text: "hey"})
	select {
	case payload := <-client.Send:
		assert.Contains(t, string(payload), `"type":"message"`)
		assert.Contains(t, string(payload), "alice_bob")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for websocket payload")
	}

	hub.LeaveConversation("alice", "alice_bob")
	assert.False(t, hub.IsViewing("alice", "alice_bob"))
}

func TestUnregisterClient_CleansUpConversations(t *testing.T) {
	hub := NewChatHub()

	client, err := hub.Register("alice", nil)
	require.NoError(t, err)
	hub.JoinConversation("alice", "alice_bob")

	hub.UnregisterClient(client)

	assert.False(t, hub.IsViewing("alice", "alice_bob"))

	hub.mu.RLock()
	_, hasConv := hub.conversations["alice_bob"]
	_, hasUser := hub.userConns["alice"]
	hub.mu.RUnlock()
	assert.False(t, hasConv)
	assert.False(t, hasUser)
}

func TestBroadcastToConversation(t *testing.T) {
	hub := NewChatHub()

	client, err := hub.Register("alice", nil)
	require.NoError(t, err)
	hub.JoinConversation("alice", "alice_bob")

	hub.BroadcastToConversation("alice_bob", []byte(`{"type":"read"}`))

	select {
	case payload := <-client.Send:
		assert.JSONEq(t, `{"type":"read"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast payload")
	}
}
