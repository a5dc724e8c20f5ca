package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	rdb := setupRedis(t)
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type event struct {
		convID  string
		payload string
	}
	received := make(chan event, 4)
	err := notifier.StartChatSubscriber(ctx, func(conversationID, payload string) {
		received <- event{conversationID, payload}
	})
	require.NoError(t, err)

	// PSubscribe setup races with the first publish; retry until delivered.
	deadline := time.After(2 * time.Second)
	for {
		err := notifier.PublishChatMessage(ctx, "alice_bob", `{"type":"message"}`)
		require.NoError(t, err)

		select {
		case ev := <-received:
			assert.Equal(t, "alice_bob", ev.convID)
			assert.JSONEq(t, `{"type":"message"}`, ev.payload)
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for subscriber delivery")
		}
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := setupRedis(t)
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())

	received := make(chan struct{}, 4)
	err := notifier.StartChatSubscriber(ctx, func(string, string) {
		received <- struct{}{}
	})
	require.NoError(t, err)

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, notifier.PublishChatMessage(context.Background(), "alice_bob", "x"))

	select {
	case <-received:
		t.Fatal("subscriber delivered after cancellation")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	assert.NoError(t, notifier.PublishChatMessage(context.Background(), "alice_bob", "x"))
	assert.NoError(t, notifier.StartChatSubscriber(context.Background(), func(string, string) {}))
}
