package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveConversationID_Commutative(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"alice", "bob"},
		{"9f3c2b1a", "0a1b2c3d"},
		{"zzz", "aaa"},
	}
	for _, p := range pairs {
		ab, err := DeriveConversationID(p[0], p[1])
		assert.NoError(t, err)
		ba, err := DeriveConversationID(p[1], p[0])
		assert.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestDeriveConversationID_SortedJoin(t *testing.T) {
	id, err := DeriveConversationID("u1", "u2")
	assert.NoError(t, err)
	assert.Equal(t, "u1_u2", id)

	id, err = DeriveConversationID("u2", "u1")
	assert.NoError(t, err)
	assert.Equal(t, "u1_u2", id)
}

func TestDeriveConversationID_NoCollisions(t *testing.T) {
	base, _ := DeriveConversationID("a", "b")
	other, _ := DeriveConversationID("a", "c")
	assert.NotEqual(t, base, other)
}

func TestDeriveConversationID_SelfConversation(t *testing.T) {
	id, err := DeriveConversationID("u1", "u1")
	assert.NoError(t, err)
	assert.Equal(t, "u1_u1", id)
}

func TestDeriveConversationID_Invalid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := DeriveConversationID("", "u2")
		assert.Error(t, err)
		assert.True(t, HasCode(err, CodeValidation))
	})

	t.Run("separator in ID", func(t *testing.T) {
		_, err := DeriveConversationID("u_1", "u2")
		assert.Error(t, err)
		assert.True(t, HasCode(err, CodeValidation))
	})
}

func TestMessagePreview(t *testing.T) {
	m := &Message{Text: "hello"}
	assert.Equal(t, "hello", m.Preview())

	m = &Message{ImagePayload: "deadbeef"}
	assert.Equal(t, ImagePreviewPlaceholder, m.Preview())

	m = &Message{Text: "caption", ImagePayload: "deadbeef"}
	assert.Equal(t, "caption", m.Preview())
}
