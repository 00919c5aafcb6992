package app

import (
	"context"

	"craft_marketplace_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// GetOrCreate moke get or create room
func (m *MockRoomRepository) GetOrCreate(ctx context.Context, designer, village domain.Participant) (*domain.ChatRoom, error) {
	args := m.Called(ctx, designer, village)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID moke find room by room id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindForUser moke page the viewer's rooms
func (m *MockRoomRepository) FindForUser(ctx context.Context, userID string, page, size int) ([]domain.ChatRoom, int64, error) {
	args := m.Called(ctx, userID, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatRoom), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

// UpdatePreview moke update room preview
func (m *MockRoomRepository) UpdatePreview(ctx context.Context, roomID string, msg *domain.ChatMessage, incUnreadFor string) error {
	args := m.Called(ctx, roomID, msg, incUnreadFor)
	return args.Error(0)
}

// ResetUnread moke reset unread counter
func (m *MockRoomRepository) ResetUnread(ctx context.Context, roomID, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert moke insert msg
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindPage moke page room messages
func (m *MockMessageRepository) FindPage(ctx context.Context, roomID string, page, size int) (*domain.MessagePage, error) {
	args := m.Called(ctx, roomID, page, size)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessagePage), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountBySender moke count msgs one user sent
func (m *MockMessageRepository) CountBySender(ctx context.Context, roomID, senderID string) (int64, error) {
	args := m.Called(ctx, roomID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

// MarkAllRead moke mark room read
func (m *MockMessageRepository) MarkAllRead(ctx context.Context, roomID, readerID string) error {
	args := m.Called(ctx, roomID, readerID)
	return args.Error(0)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockPubSub) Publish(topic string, payload interface{}) error {
	args := m.Called(topic, payload)
	return args.Error(0)
}

// Subscribe moke subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, topic string, handler func(evt domain.WSEvent)) error {
	args := m.Called(topic, handler)
	return args.Error(0)
}
