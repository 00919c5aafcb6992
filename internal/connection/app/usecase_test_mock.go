package app

import (
	"context"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/internal/connection/domain"

	"github.com/stretchr/testify/mock"
)

// MockConnectionRepository Mock ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

// Create moke create connection
func (m *MockConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

// FindByID moke find connection by id
func (m *MockConnectionRepository) FindByID(ctx context.Context, connectionID string) (*domain.Connection, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByRoom moke find room connection
func (m *MockConnectionRepository) FindByRoom(ctx context.Context, roomID string) (*domain.Connection, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindPendingReceived moke pending received list
func (m *MockConnectionRepository) FindPendingReceived(ctx context.Context, userID string) ([]domain.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindPendingSent moke pending sent list
func (m *MockConnectionRepository) FindPendingSent(ctx context.Context, userID string) ([]domain.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindAccepted moke accepted list
func (m *MockConnectionRepository) FindAccepted(ctx context.Context, userID string) ([]domain.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateStatus moke guarded status transition
func (m *MockConnectionRepository) UpdateStatus(ctx context.Context, connectionID string, status domain.ConnectionStatus, updatedAt string) (bool, error) {
	args := m.Called(ctx, connectionID, status, updatedAt)
	return args.Bool(0), args.Error(1)
}

// MockRoomRepository Mock chat RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// GetOrCreate moke get or create room
func (m *MockRoomRepository) GetOrCreate(ctx context.Context, designer, village chatdomain.Participant) (*chatdomain.ChatRoom, error) {
	args := m.Called(ctx, designer, village)
	if args.Get(0) != nil {
		return args.Get(0).(*chatdomain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID moke find room by id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*chatdomain.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*chatdomain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindForUser moke page the viewer's rooms
func (m *MockRoomRepository) FindForUser(ctx context.Context, userID string, page, size int) ([]chatdomain.ChatRoom, int64, error) {
	args := m.Called(ctx, userID, page, size)
	if args.Get(0) != nil {
		return args.Get(0).([]chatdomain.ChatRoom), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

// UpdatePreview moke update room preview
func (m *MockRoomRepository) UpdatePreview(ctx context.Context, roomID string, msg *chatdomain.ChatMessage, incUnreadFor string) error {
	args := m.Called(ctx, roomID, msg, incUnreadFor)
	return args.Error(0)
}

// ResetUnread moke reset unread counter
func (m *MockRoomRepository) ResetUnread(ctx context.Context, roomID, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

// MockMessageRepository Mock chat MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert moke insert msg
func (m *MockMessageRepository) Insert(ctx context.Context, msg *chatdomain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindPage moke page room messages
func (m *MockMessageRepository) FindPage(ctx context.Context, roomID string, page, size int) (*chatdomain.MessagePage, error) {
	args := m.Called(ctx, roomID, page, size)
	if args.Get(0) != nil {
		return args.Get(0).(*chatdomain.MessagePage), args.Error(1)
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
