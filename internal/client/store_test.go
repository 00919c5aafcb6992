package client

import (
	"testing"

	chatdomain "craft_marketplace_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func TestMessageStore_LoadInitialReverses(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	s.LoadInitial(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m3", RoomID: "room-1", SenderID: "other", CreatedAt: "2026-09-01T10:00:03.000Z"},
			{MessageID: "m2", RoomID: "room-1", SenderID: "me", CreatedAt: "2026-09-01T10:00:02.000Z"},
			{MessageID: "m1", RoomID: "room-1", SenderID: "other", CreatedAt: "2026-09-01T10:00:01.000Z"},
		},
	})

	msgs := s.Messages()
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{msgs[0].MessageID, msgs[1].MessageID, msgs[2].MessageID})
	assert.True(t, msgs[1].IsOwnMessage)
	assert.False(t, msgs[0].IsOwnMessage)
}

func TestMessageStore_EchoReplacesByTempMatch(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	temp := s.AppendOptimistic(chatdomain.SendMessageRequest{Content: "hello"})
	assert.Contains(t, temp.MessageID, TempIDPrefix)

	// server echo carries the real id but the same content and room
	s.ApplyPush(chatdomain.ChatMessage{
		MessageID: "real-1",
		RoomID:    "room-1",
		SenderID:  "me",
		Content:   "hello",
		CreatedAt: chatdomain.NowString(),
	})

	msgs := s.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, "real-1", msgs[0].MessageID)
	assert.True(t, msgs[0].IsOwnMessage)
}

func TestMessageStore_EchoReplacesById(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	s.LoadInitial(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m1", RoomID: "room-1", SenderID: "me", Content: "hi"},
		},
	})

	// the same message pushed again must not duplicate
	s.ApplyPush(chatdomain.ChatMessage{MessageID: "m1", RoomID: "room-1", SenderID: "me", Content: "hi"})

	assert.Len(t, s.Messages(), 1)
}

func TestMessageStore_ForeignPushAppendsAndMarksRead(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	var marked []string
	s.OnForeignMessage = func(roomID string) { marked = append(marked, roomID) }

	s.ApplyPush(chatdomain.ChatMessage{
		MessageID: "f1",
		RoomID:    "room-1",
		SenderID:  "other",
		Content:   "from the village",
	})

	msgs := s.Messages()
	assert.Len(t, msgs, 1)
	assert.False(t, msgs[0].IsOwnMessage)
	assert.Equal(t, []string{"room-1"}, marked)
}

func TestMessageStore_ForeignPushInactiveRoomNoMarkRead(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", false)

	var marked []string
	s.OnForeignMessage = func(roomID string) { marked = append(marked, roomID) }

	s.ApplyPush(chatdomain.ChatMessage{MessageID: "f1", RoomID: "room-1", SenderID: "other"})

	assert.Len(t, s.Messages(), 1)
	assert.Empty(t, marked)
}

func TestMessageStore_PushForOtherRoomDropped(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	s.ApplyPush(chatdomain.ChatMessage{MessageID: "x1", RoomID: "room-2", SenderID: "other"})

	assert.Empty(t, s.Messages())
}

func TestMessageStore_ReconcilePollKeepsLocalWhenSame(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	s.LoadInitial(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m2", RoomID: "room-1", SenderID: "other"},
			{MessageID: "m1", RoomID: "room-1", SenderID: "me"},
		},
	})
	// optimistic entry the poll has not seen yet
	s.AppendOptimistic(chatdomain.SendMessageRequest{Content: "in flight"})

	// poll returns the same two messages: shorter than local, same last
	// id excluded because local last is the temp entry, but the poll is
	// NOT longer, so the local list wins
	s.ReconcilePoll(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m2", RoomID: "room-1", SenderID: "other"},
			{MessageID: "m1", RoomID: "room-1", SenderID: "me"},
		},
	})

	assert.Len(t, s.Messages(), 3)
}

func TestMessageStore_ReconcilePollReplacesWhenLonger(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	s.LoadInitial(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m1", RoomID: "room-1", SenderID: "me"},
		},
	})

	s.ReconcilePoll(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m2", RoomID: "room-1", SenderID: "other"},
			{MessageID: "m1", RoomID: "room-1", SenderID: "me"},
		},
	})

	msgs := s.Messages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[1].MessageID)
}

func TestMessageStore_ReconcilePollReplacesWhenLastDiffers(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	s.LoadInitial(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m2", RoomID: "room-1", SenderID: "me"},
			{MessageID: "m1", RoomID: "room-1", SenderID: "other"},
		},
	})

	// same length, different tail
	s.ReconcilePoll(&chatdomain.MessagePage{
		Content: []chatdomain.ChatMessage{
			{MessageID: "m3", RoomID: "room-1", SenderID: "other"},
			{MessageID: "m1", RoomID: "room-1", SenderID: "other"},
		},
	})

	msgs := s.Messages()
	assert.Equal(t, "m3", msgs[len(msgs)-1].MessageID)
}

func TestMessageStore_AppendConfirmedReplacesTemp(t *testing.T) {
	s := NewMessageStore("me")
	s.SetRoom("room-1", true)

	temp := s.AppendOptimistic(chatdomain.SendMessageRequest{Content: "rest path"})
	s.AppendConfirmed(temp.MessageID, chatdomain.ChatMessage{
		MessageID: "real-9",
		RoomID:    "room-1",
		SenderID:  "me",
		Content:   "rest path",
	})

	msgs := s.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, "real-9", msgs[0].MessageID)
	assert.True(t, msgs[0].IsOwnMessage)
}
