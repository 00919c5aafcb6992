package client

import (
	"strings"
	"sync"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TempIDPrefix optimistic messages carry ids with this prefix until the
// server echo replaces them
const TempIDPrefix = "temp-"

// MessageStore ordered message list for the open room. All mutation paths
// funnel through the same reconciliation rules so pushes, polls and
// optimistic sends cannot duplicate a message.
type MessageStore struct {
	mu sync.Mutex

	selfID   string
	roomID   string
	active   bool
	messages []chatdomain.ChatMessage

	// OnForeignMessage runs after a foreign message lands while the room
	// is active; the owner wires mark-read here
	OnForeignMessage func(roomID string)
	// OnChange runs after every visible mutation
	OnChange func()
}

// NewMessageStore create MessageStore for one viewer
func NewMessageStore(selfID string) *MessageStore {
	return &MessageStore{selfID: selfID}
}

// SetRoom bind the store to a room and drop the previous room's messages
func (s *MessageStore) SetRoom(roomID string, active bool) {
	s.mu.Lock()
	s.roomID = roomID
	s.active = active
	s.messages = nil
	s.mu.Unlock()
}

// SetActive the room's visibility drives the mark-read side effect
func (s *MessageStore) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// Messages snapshot, oldest first
func (s *MessageStore) Messages() []chatdomain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chatdomain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// LoadInitial install one newest-first history page as the chronological
// list
func (s *MessageStore) LoadInitial(page *chatdomain.MessagePage) {
	msgs := make([]chatdomain.ChatMessage, len(page.Content))
	// server pages are newest first, display order is oldest first
	for i, m := range page.Content {
		m.IsOwnMessage = m.SenderID == s.selfID
		msgs[len(page.Content)-1-i] = m
	}

	s.mu.Lock()
	s.messages = msgs
	cb := s.OnChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// AppendOptimistic add the local user's message immediately with a temp
// id; the server echo reconciles it later
func (s *MessageStore) AppendOptimistic(req chatdomain.SendMessageRequest) chatdomain.ChatMessage {
	msgType := req.MessageType
	if msgType == "" {
		msgType = chatdomain.DeriveMessageType(req.FileType)
	}

	s.mu.Lock()
	msg := chatdomain.ChatMessage{
		MessageID:    TempIDPrefix + uuid.New().String(),
		RoomID:       s.roomID,
		SenderID:     s.selfID,
		Content:      req.Content,
		MessageType:  msgType,
		FileURL:      req.FileURL,
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		FileType:     req.FileType,
		ThumbnailURL: req.ThumbnailURL,
		IsOwnMessage: true,
		CreatedAt:    chatdomain.NowString(),
	}
	s.messages = append(s.messages, msg)
	cb := s.OnChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
	return msg
}

// AppendConfirmed replace an optimistic message with the REST response
func (s *MessageStore) AppendConfirmed(tempID string, confirmed chatdomain.ChatMessage) {
	confirmed.IsOwnMessage = true

	s.mu.Lock()
	replaced := false
	for i := range s.messages {
		if s.messages[i].MessageID == tempID {
			s.messages[i] = confirmed
			replaced = true
			break
		}
	}
	if !replaced {
		s.messages = append(s.messages, confirmed)
	}
	cb := s.OnChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// ApplyPush reconcile one realtime message. The local echo of an
// optimistic send is matched by id, or by temp prefix plus identical
// content in the same room, and replaced in place; anything else appends
// as a foreign message.
func (s *MessageStore) ApplyPush(msg chatdomain.ChatMessage) {
	s.mu.Lock()
	if msg.RoomID != s.roomID {
		s.mu.Unlock()
		logger.Log.Debug("push for another room dropped", zap.String("roomID", msg.RoomID))
		return
	}

	echoIdx := -1
	for i := range s.messages {
		if s.messages[i].MessageID == msg.MessageID {
			echoIdx = i
			break
		}
		if strings.HasPrefix(s.messages[i].MessageID, TempIDPrefix) &&
			s.messages[i].Content == msg.Content &&
			s.messages[i].RoomID == msg.RoomID {
			echoIdx = i
			break
		}
	}

	foreign := false
	if echoIdx >= 0 {
		msg.IsOwnMessage = true
		s.messages[echoIdx] = msg
	} else {
		msg.IsOwnMessage = msg.SenderID == s.selfID
		s.messages = append(s.messages, msg)
		foreign = !msg.IsOwnMessage
	}

	notifyRead := foreign && s.active
	roomID := s.roomID
	onRead := s.OnForeignMessage
	cb := s.OnChange
	s.mu.Unlock()

	if notifyRead && onRead != nil {
		onRead(roomID)
	}
	if cb != nil {
		cb()
	}
}

// ReconcilePoll merge a freshly polled newest-first page. The poll result
// replaces the list only when it is longer than what we hold or its last
// message differs; otherwise the local list, which may contain optimistic
// entries, wins.
func (s *MessageStore) ReconcilePoll(page *chatdomain.MessagePage) {
	polled := make([]chatdomain.ChatMessage, len(page.Content))
	for i, m := range page.Content {
		m.IsOwnMessage = m.SenderID == s.selfID
		polled[len(page.Content)-1-i] = m
	}

	s.mu.Lock()
	replace := len(polled) > len(s.messages)
	if !replace && len(polled) > 0 && len(s.messages) > 0 {
		replace = polled[len(polled)-1].MessageID != s.messages[len(s.messages)-1].MessageID
	}
	if replace {
		s.messages = polled
	}
	cb := s.OnChange
	s.mu.Unlock()
	if replace && cb != nil {
		cb()
	}
}
