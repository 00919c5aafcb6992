package client

import (
	"sync"
	"time"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"

	"go.uber.org/zap"
)

// RoomListPollInterval full refetch cadence for the conversation list
const RoomListPollInterval = 10 * time.Second

// RoomList conversation list kept fresh by a poll plus cheap in-place
// preview updates from pushes
type RoomList struct {
	api    API
	selfID string

	// PollInterval overridable for tests
	PollInterval time.Duration

	// OnChange runs after the list changes
	OnChange func()

	mu           sync.Mutex
	rooms        []chatdomain.ChatRoom
	activeRoomID string
	pollStop     chan struct{}
}

// NewRoomList create RoomList for one viewer
func NewRoomList(api API, selfID string) *RoomList {
	return &RoomList{
		api:          api,
		selfID:       selfID,
		PollInterval: RoomListPollInterval,
	}
}

// Rooms snapshot
func (l *RoomList) Rooms() []chatdomain.ChatRoom {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]chatdomain.ChatRoom, len(l.rooms))
	copy(out, l.rooms)
	return out
}

// SetActiveRoom the open room never accrues unread counts
func (l *RoomList) SetActiveRoom(roomID string) {
	l.mu.Lock()
	l.activeRoomID = roomID
	for i := range l.rooms {
		if l.rooms[i].RoomID == roomID {
			l.rooms[i].UnreadCount = 0
		}
	}
	cb := l.OnChange
	l.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Refresh full refetch of the first page
func (l *RoomList) Refresh() error {
	page, err := l.api.ListRooms(0, 50)
	if err != nil {
		return err
	}

	l.mu.Lock()
	rooms := page.Rooms
	// the open room's unread is pinned at zero regardless of the server
	for i := range rooms {
		if rooms[i].RoomID == l.activeRoomID {
			rooms[i].UnreadCount = 0
		}
	}
	l.rooms = rooms
	cb := l.OnChange
	l.mu.Unlock()
	if cb != nil {
		cb()
	}
	return nil
}

// Start initial fetch plus the background poll; Stop ends it
func (l *RoomList) Start() {
	if err := l.Refresh(); err != nil {
		logger.Log.Warn("room list fetch failed", zap.Error(err))
	}

	l.mu.Lock()
	if l.pollStop != nil {
		l.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	l.pollStop = stop
	l.mu.Unlock()

	go func() {
		ticker := time.NewTicker(l.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := l.Refresh(); err != nil {
					logger.Log.Warn("room list poll failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop end the background poll
func (l *RoomList) Stop() {
	l.mu.Lock()
	if l.pollStop != nil {
		close(l.pollStop)
		l.pollStop = nil
	}
	l.mu.Unlock()
}

// HandlePush update the affected room's preview in place. Unread only
// grows for foreign messages in rooms that are not open; the open room's
// counter is forced to zero.
func (l *RoomList) HandlePush(msg chatdomain.ChatMessage) {
	l.mu.Lock()
	found := false
	for i := range l.rooms {
		if l.rooms[i].RoomID != msg.RoomID {
			continue
		}
		found = true

		preview := msg.Content
		if preview == "" && msg.FileName != "" {
			preview = msg.FileName
		}
		l.rooms[i].LastMessageContent = preview
		l.rooms[i].LastMessageType = msg.MessageType
		l.rooms[i].LastMessageAt = msg.CreatedAt
		l.rooms[i].LastMessageSenderName = msg.SenderName

		foreign := msg.SenderID != l.selfID
		if foreign && msg.RoomID != l.activeRoomID {
			l.rooms[i].UnreadCount++
		} else {
			l.rooms[i].UnreadCount = 0
		}
		break
	}
	cb := l.OnChange
	l.mu.Unlock()

	if !found {
		// a room we have not seen yet, let the next poll bring it in
		if err := l.Refresh(); err != nil {
			logger.Log.Warn("room list refresh after push failed", zap.Error(err))
		}
		return
	}
	if cb != nil {
		cb()
	}
}

// MarkRead tell the server and zero the local counter
func (l *RoomList) MarkRead(roomID string) error {
	if err := l.api.MarkRead(roomID); err != nil {
		return err
	}
	l.mu.Lock()
	for i := range l.rooms {
		if l.rooms[i].RoomID == roomID {
			l.rooms[i].UnreadCount = 0
			break
		}
	}
	cb := l.OnChange
	l.mu.Unlock()
	if cb != nil {
		cb()
	}
	return nil
}
