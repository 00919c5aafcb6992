package app

import (
	"context"
	"encoding/json"
	"strings"

	"craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/internal/chat/repository"
	errprocess "craft_marketplace_service/pkg/err"
	"craft_marketplace_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageUseCase handles sending and reading room messages
type MessageUseCase struct {
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	pubSub   repository.PubSub
}

// NewMessageUseCase create MessageUseCase
func NewMessageUseCase(
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	pubSub repository.PubSub,
) *MessageUseCase {
	return &MessageUseCase{
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		pubSub:   pubSub,
	}
}

// Send validate, persist and fan out a message. Empty content with no file
// is rejected before any storage I/O.
func (uc *MessageUseCase) Send(ctx context.Context, roomID string, sender domain.Participant, req domain.SendMessageRequest) (*domain.ChatMessage, error) {
	if strings.TrimSpace(req.Content) == "" && req.FileURL == "" {
		return nil, errprocess.Set("message content is empty")
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(sender.UserID) {
		return nil, errprocess.Set("not a participant of this room")
	}

	msgType := req.MessageType
	if msgType == "" {
		msgType = domain.DeriveMessageType(req.FileType)
	}

	msg := &domain.ChatMessage{
		MessageID:    uuid.New().String(),
		RoomID:       roomID,
		SenderID:     sender.UserID,
		SenderName:   sender.Name,
		SenderType:   sender.Type,
		Content:      req.Content,
		MessageType:  msgType,
		FileURL:      req.FileURL,
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		FileType:     req.FileType,
		ThumbnailURL: req.ThumbnailURL,
		CreatedAt:    domain.NowString(),
		ReadBy:       []string{sender.UserID},
	}

	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	other := room.OtherParticipant(sender.UserID)
	if err := uc.roomRepo.UpdatePreview(ctx, roomID, msg, other.UserID); err != nil {
		logger.Log.Error("update room preview err", zap.String("roomID", roomID), zap.Error(err))
	}

	if uc.pubSub != nil {
		payload, _ := json.Marshal(msg)
		if err := uc.pubSub.Publish(domain.MessageTopic(roomID), domain.WSEvent{
			Topic:   domain.MessageTopic(roomID),
			Payload: payload,
		}); err != nil {
			logger.Log.Error("publish message err", zap.String("roomID", roomID), zap.Error(err))
		}
	}

	return msg, nil
}

// History one page of room messages, newest first, viewer relative
func (uc *MessageUseCase) History(ctx context.Context, roomID, viewerID string, page, size int) (*domain.MessagePage, error) {
	if size <= 0 {
		size = 50
	}
	if page < 0 {
		page = 0
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(viewerID) {
		return nil, errprocess.Set("not a participant of this room")
	}

	result, err := uc.msgRepo.FindPage(ctx, roomID, page, size)
	if err != nil {
		return nil, err
	}
	for i := range result.Content {
		result.Content[i].IsOwnMessage = result.Content[i].SenderID == viewerID
	}
	return result, nil
}

// CountBySender number of messages one user has sent in a room
func (uc *MessageUseCase) CountBySender(ctx context.Context, roomID, senderID string) (int64, error) {
	return uc.msgRepo.CountBySender(ctx, roomID, senderID)
}

// Typing fan out an ephemeral typing indicator, never persisted
func (uc *MessageUseCase) Typing(roomID string, ind domain.TypingIndicator) error {
	if uc.pubSub == nil {
		return nil
	}
	payload, _ := json.Marshal(ind)
	return uc.pubSub.Publish(domain.TypingTopic(roomID), domain.WSEvent{
		Topic:   domain.TypingTopic(roomID),
		Payload: payload,
	})
}
