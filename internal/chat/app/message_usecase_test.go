package app

import (
	"context"
	"testing"

	"craft_marketplace_service/internal/chat/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testRoom(roomID, designerID, villageID string) *domain.ChatRoom {
	return &domain.ChatRoom{
		RoomID:   roomID,
		Designer: domain.Participant{UserID: designerID, Name: "Mina", Type: domain.SenderDesigner},
		Village:  domain.Participant{UserID: villageID, Name: "Bat Trang", Type: domain.SenderVillage},
		UnreadCounts: map[string]int{
			designerID: 0,
			villageID:  0,
		},
	}
}

func TestMessageUseCase_Send(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	designerID := uuid.New().String()
	villageID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockPubSub)

	mockRoomRepo.On("FindByID", ctx, roomID).Return(testRoom(roomID, designerID, villageID), nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	// preview update bumps the village's unread counter
	mockRoomRepo.On("UpdatePreview", ctx, roomID, mock.Anything, villageID).Return(nil)
	mockPubSub.On("Publish", domain.MessageTopic(roomID), mock.Anything).Return(nil)

	uc := NewMessageUseCase(mockRoomRepo, mockMsgRepo, mockPubSub)
	sender := domain.Participant{UserID: designerID, Name: "Mina", Type: domain.SenderDesigner}
	msg, err := uc.Send(ctx, roomID, sender, domain.SendMessageRequest{Content: "Hello, village!"})

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, domain.MessageTypeText, msg.MessageType)
	assert.Equal(t, domain.SenderDesigner, msg.SenderType)

	mockRoomRepo.AssertExpectations(t)
	mockMsgRepo.AssertExpectations(t)
	mockPubSub.AssertExpectations(t)
}

func TestMessageUseCase_SendEmptyContent(t *testing.T) {
	ctx := context.Background()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)

	uc := NewMessageUseCase(mockRoomRepo, mockMsgRepo, nil)
	sender := domain.Participant{UserID: "d1", Type: domain.SenderDesigner}
	_, err := uc.Send(ctx, "room-1", sender, domain.SendMessageRequest{Content: "   "})

	assert.Error(t, err)
	// rejected before any storage call
	mockRoomRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	mockMsgRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMessageUseCase_SendFileOnly(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()
	designerID := uuid.New().String()
	villageID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockPubSub)

	mockRoomRepo.On("FindByID", ctx, roomID).Return(testRoom(roomID, designerID, villageID), nil)
	mockMsgRepo.On("Insert", ctx, mock.Anything).Return(nil)
	mockRoomRepo.On("UpdatePreview", ctx, roomID, mock.Anything, designerID).Return(nil)
	mockPubSub.On("Publish", domain.MessageTopic(roomID), mock.Anything).Return(nil)

	uc := NewMessageUseCase(mockRoomRepo, mockMsgRepo, mockPubSub)
	sender := domain.Participant{UserID: villageID, Name: "Bat Trang", Type: domain.SenderVillage}
	msg, err := uc.Send(ctx, roomID, sender, domain.SendMessageRequest{
		FileURL:  "http://minio/chat/a.png",
		FileName: "a.png",
		FileSize: 1024,
		FileType: "image/png",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeImage, msg.MessageType)
	mockRoomRepo.AssertExpectations(t)
}

func TestMessageUseCase_SendNotParticipant(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockRoomRepo.On("FindByID", ctx, roomID).Return(testRoom(roomID, "d1", "v1"), nil)

	uc := NewMessageUseCase(mockRoomRepo, mockMsgRepo, nil)
	sender := domain.Participant{UserID: "stranger", Type: domain.SenderDesigner}
	_, err := uc.Send(ctx, roomID, sender, domain.SendMessageRequest{Content: "hi"})

	assert.Error(t, err)
	mockMsgRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMessageUseCase_History(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New().String()

	mockRoomRepo := new(MockRoomRepository)
	mockMsgRepo := new(MockMessageRepository)
	mockRoomRepo.On("FindByID", ctx, roomID).Return(testRoom(roomID, "d1", "v1"), nil)

	page := &domain.MessagePage{
		Content: []domain.ChatMessage{
			{MessageID: "m2", SenderID: "v1", Content: "newer"},
			{MessageID: "m1", SenderID: "d1", Content: "older"},
		},
		TotalElements: 2,
		TotalPages:    1,
		Size:          50,
		First:         true,
		Last:          true,
	}
	mockMsgRepo.On("FindPage", ctx, roomID, 0, 50).Return(page, nil)

	uc := NewMessageUseCase(mockRoomRepo, mockMsgRepo, nil)
	result, err := uc.History(ctx, roomID, "d1", 0, 50)

	assert.NoError(t, err)
	assert.False(t, result.Content[0].IsOwnMessage)
	assert.True(t, result.Content[1].IsOwnMessage)
}

func TestMessageUseCase_Typing(t *testing.T) {
	roomID := uuid.New().String()

	mockPubSub := new(MockPubSub)
	mockPubSub.On("Publish", domain.TypingTopic(roomID), mock.Anything).Return(nil)

	uc := NewMessageUseCase(nil, nil, mockPubSub)
	err := uc.Typing(roomID, domain.TypingIndicator{
		RoomID:   roomID,
		UserID:   "d1",
		UserName: "Mina",
		Typing:   true,
	})

	assert.NoError(t, err)
	mockPubSub.AssertExpectations(t)
}
