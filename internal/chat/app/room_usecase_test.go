package app

import (
	"context"
	"testing"

	"craft_marketplace_service/internal/chat/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoomUseCase_StartChat(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()

	designer := domain.Participant{UserID: "d1", Name: "Mina", Type: domain.SenderDesigner}
	village := domain.Participant{UserID: "v1", Name: "Bat Trang", Type: domain.SenderVillage}

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("GetOrCreate", ctx, designer, village).Return(&domain.ChatRoom{
		RoomID:       roomID,
		Designer:     designer,
		Village:      village,
		UnreadCounts: map[string]int{"d1": 0, "v1": 3},
	}, nil)

	uc := NewRoomUseCase(mockRoomRepo, new(MockMessageRepository))
	room, err := uc.StartChat(ctx, designer, domain.StartChatRequest{
		VillageID:   "v1",
		VillageName: "Bat Trang",
	})

	assert.NoError(t, err)
	assert.Equal(t, roomID, room.RoomID)
	// viewer projection is designer relative
	assert.Equal(t, "Bat Trang", room.OtherParticipantName)
	assert.Equal(t, domain.SenderVillage, room.OtherParticipantType)
	assert.Equal(t, 0, room.UnreadCount)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomUseCase_StartChatMissingOtherParty(t *testing.T) {
	ctx := context.Background()

	uc := NewRoomUseCase(new(MockRoomRepository), new(MockMessageRepository))
	designer := domain.Participant{UserID: "d1", Type: domain.SenderDesigner}
	_, err := uc.StartChat(ctx, designer, domain.StartChatRequest{})

	assert.Error(t, err)
}

func TestRoomUseCase_ListRooms(t *testing.T) {
	ctx := context.Background()

	designer := domain.Participant{UserID: "d1", Name: "Mina", Type: domain.SenderDesigner}
	village := domain.Participant{UserID: "v1", Name: "Bat Trang", Type: domain.SenderVillage}

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("FindForUser", ctx, "v1", 0, 20).Return([]domain.ChatRoom{
		{
			RoomID:       "r1",
			Designer:     designer,
			Village:      village,
			UnreadCounts: map[string]int{"v1": 2},
		},
	}, int64(1), nil)

	uc := NewRoomUseCase(mockRoomRepo, new(MockMessageRepository))
	page, err := uc.ListRooms(ctx, "v1", 0, 20)

	assert.NoError(t, err)
	assert.Len(t, page.Rooms, 1)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "Mina", page.Rooms[0].OtherParticipantName)
	assert.Equal(t, 2, page.Rooms[0].UnreadCount)
}

func TestRoomUseCase_MarkRead(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockRoomRepo.On("FindByID", ctx, roomID).Return(testRoom(roomID, "d1", "v1"), nil)
	mockMsgRepo.On("MarkAllRead", ctx, roomID, "d1").Return(nil)
	mockRoomRepo.On("ResetUnread", ctx, roomID, "d1").Return(nil)

	uc := NewRoomUseCase(mockRoomRepo, mockMsgRepo)
	err := uc.MarkRead(ctx, roomID, "d1")

	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
}

func TestRoomUseCase_MarkReadNotParticipant(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockRoomRepo.On("FindByID", ctx, roomID).Return(testRoom(roomID, "d1", "v1"), nil)

	uc := NewRoomUseCase(mockRoomRepo, mockMsgRepo)
	err := uc.MarkRead(ctx, roomID, "stranger")

	assert.Error(t, err)
	mockMsgRepo.AssertNotCalled(t, "MarkAllRead", ctx, roomID, "stranger")
}
