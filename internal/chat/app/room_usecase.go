package app

import (
	"context"

	"craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/internal/chat/repository"
	errprocess "craft_marketplace_service/pkg/err"
)

// RoomUseCase handles designer/village room lifecycle
type RoomUseCase struct {
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
}

// NewRoomUseCase create RoomUseCase
func NewRoomUseCase(roomRepo repository.RoomRepository, msgRepo repository.MessageRepository) *RoomUseCase {
	return &RoomUseCase{
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
	}
}

// StartChat idempotent get-or-create of the caller's room with the other
// party named in the request. Calling it twice lands in the same room.
func (uc *RoomUseCase) StartChat(ctx context.Context, caller domain.Participant, req domain.StartChatRequest) (*domain.ChatRoom, error) {
	var designer, village domain.Participant

	switch caller.Type {
	case domain.SenderDesigner:
		if req.VillageID == "" {
			return nil, errprocess.Set("villageId is required")
		}
		designer = caller
		village = domain.Participant{UserID: req.VillageID, Name: req.VillageName, Type: domain.SenderVillage}
	case domain.SenderVillage:
		if req.DesignerID == "" {
			return nil, errprocess.Set("designerId is required")
		}
		village = caller
		designer = domain.Participant{UserID: req.DesignerID, Name: req.DesignerName, Type: domain.SenderDesigner}
	default:
		return nil, errprocess.Set("unknown participant type")
	}

	room, err := uc.roomRepo.GetOrCreate(ctx, designer, village)
	if err != nil {
		return nil, err
	}
	room.ProjectForViewer(caller.UserID)
	return room, nil
}

// GetRoom fetch one room the viewer participates in
func (uc *RoomUseCase) GetRoom(ctx context.Context, roomID, viewerID string) (*domain.ChatRoom, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(viewerID) {
		return nil, errprocess.Set("not a participant of this room")
	}
	room.ProjectForViewer(viewerID)
	return room, nil
}

// ListRooms page the viewer's rooms, most recent activity first
func (uc *RoomUseCase) ListRooms(ctx context.Context, viewerID string, page, size int) (*domain.RoomPage, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	rooms, total, err := uc.roomRepo.FindForUser(ctx, viewerID, page, size)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].ProjectForViewer(viewerID)
	}
	if rooms == nil {
		rooms = []domain.ChatRoom{}
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}

	return &domain.RoomPage{
		Rooms:         rooms,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalElements: total,
		Size:          size,
	}, nil
}

// MarkRead mark the whole room read for the viewer and zero the unread
// counter
func (uc *RoomUseCase) MarkRead(ctx context.Context, roomID, viewerID string) error {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(viewerID) {
		return errprocess.Set("not a participant of this room")
	}

	if err := uc.msgRepo.MarkAllRead(ctx, roomID, viewerID); err != nil {
		return err
	}
	return uc.roomRepo.ResetUnread(ctx, roomID, viewerID)
}
