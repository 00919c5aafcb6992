package app

import (
	"context"
	"fmt"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	chatrepo "craft_marketplace_service/internal/chat/repository"
	"craft_marketplace_service/internal/connection/domain"
	"craft_marketplace_service/internal/connection/repository"
	errprocess "craft_marketplace_service/pkg/err"

	"github.com/google/uuid"
)

// ConnectionUseCase handles eligibility and the request lifecycle
type ConnectionUseCase struct {
	connRepo repository.ConnectionRepository
	roomRepo chatrepo.RoomRepository
	msgRepo  chatrepo.MessageRepository

	// requiredCount messages each side must have sent; defaults to
	// domain.RequiredMessageCount
	requiredCount int64
}

// NewConnectionUseCase create ConnectionUseCase
func NewConnectionUseCase(
	connRepo repository.ConnectionRepository,
	roomRepo chatrepo.RoomRepository,
	msgRepo chatrepo.MessageRepository,
	requiredCount int64,
) *ConnectionUseCase {
	if requiredCount <= 0 {
		requiredCount = domain.RequiredMessageCount
	}
	return &ConnectionUseCase{
		connRepo:      connRepo,
		roomRepo:      roomRepo,
		msgRepo:       msgRepo,
		requiredCount: requiredCount,
	}
}

// Eligibility compute whether the viewer can send a connection request for
// this room. Eligible only when there is no accepted or pending connection
// and both sides reached the message threshold.
func (uc *ConnectionUseCase) Eligibility(ctx context.Context, roomID, viewerID string) (*domain.ConnectionEligibility, error) {
	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(viewerID) {
		return nil, errprocess.Set("not a participant of this room")
	}
	other := room.OtherParticipant(viewerID)

	result := &domain.ConnectionEligibility{
		RoomID:        roomID,
		RequiredCount: uc.requiredCount,
	}

	conn, err := uc.connRepo.FindByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		switch conn.Status {
		case domain.StatusAccepted:
			result.AlreadyConnected = true
			result.Reason = "already connected"
		case domain.StatusPending:
			result.PendingRequest = true
			result.Reason = "connection request pending"
		}
	}

	myCount, err := uc.msgRepo.CountBySender(ctx, roomID, viewerID)
	if err != nil {
		return nil, err
	}
	otherCount, err := uc.msgRepo.CountBySender(ctx, roomID, other.UserID)
	if err != nil {
		return nil, err
	}
	result.MyMessageCount = myCount
	result.OtherMessageCount = otherCount

	if !result.AlreadyConnected && !result.PendingRequest {
		if myCount >= uc.requiredCount && otherCount >= uc.requiredCount {
			result.Eligible = true
		} else {
			result.Reason = fmt.Sprintf("both parties must send at least %d messages", uc.requiredCount)
		}
	}
	return result, nil
}

// SendRequest create a pending connection. Eligibility is rechecked here
// so a stale client cannot bypass the threshold.
func (uc *ConnectionUseCase) SendRequest(ctx context.Context, roomID, requesterID string) (*domain.Connection, error) {
	elig, err := uc.Eligibility(ctx, roomID, requesterID)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, errprocess.Set(fmt.Sprintf("not eligible to connect: %s", elig.Reason))
	}

	room, err := uc.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var requester, receiver chatdomain.Participant
	if room.Designer.UserID == requesterID {
		requester, receiver = room.Designer, room.Village
	} else {
		requester, receiver = room.Village, room.Designer
	}

	now := chatdomain.NowString()
	conn := &domain.Connection{
		ConnectionID: uuid.New().String(),
		RoomID:       roomID,
		Requester:    requester,
		Receiver:     receiver,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.connRepo.Create(ctx, conn); err != nil {
		return nil, err
	}
	conn.ProjectForViewer(requesterID)
	return conn, nil
}

// Accept receiver-only transition PENDING→ACCEPTED
func (uc *ConnectionUseCase) Accept(ctx context.Context, connectionID, viewerID string) (*domain.Connection, error) {
	return uc.decide(ctx, connectionID, viewerID, domain.StatusAccepted)
}

// Reject receiver-only transition PENDING→REJECTED
func (uc *ConnectionUseCase) Reject(ctx context.Context, connectionID, viewerID string) (*domain.Connection, error) {
	return uc.decide(ctx, connectionID, viewerID, domain.StatusRejected)
}

func (uc *ConnectionUseCase) decide(ctx context.Context, connectionID, viewerID string, status domain.ConnectionStatus) (*domain.Connection, error) {
	conn, err := uc.connRepo.FindByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.Receiver.UserID != viewerID {
		return nil, errprocess.Set("only the receiver can decide a connection request")
	}
	if conn.IsTerminal() {
		return nil, errprocess.Set("connection request already decided")
	}

	now := chatdomain.NowString()
	updated, err := uc.connRepo.UpdateStatus(ctx, connectionID, status, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, errprocess.Set("connection request already decided")
	}

	conn.Status = status
	conn.UpdatedAt = now
	conn.ProjectForViewer(viewerID)
	return conn, nil
}

// ListAccepted the viewer's established connections
func (uc *ConnectionUseCase) ListAccepted(ctx context.Context, viewerID string) ([]domain.Connection, error) {
	conns, err := uc.connRepo.FindAccepted(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		conns[i].ProjectForViewer(viewerID)
	}
	return conns, nil
}

// ListPendingReceived requests waiting on the viewer's decision
func (uc *ConnectionUseCase) ListPendingReceived(ctx context.Context, viewerID string) ([]domain.Connection, error) {
	conns, err := uc.connRepo.FindPendingReceived(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		conns[i].ProjectForViewer(viewerID)
	}
	return conns, nil
}

// ListPendingSent requests the viewer sent and still awaits
func (uc *ConnectionUseCase) ListPendingSent(ctx context.Context, viewerID string) ([]domain.Connection, error) {
	conns, err := uc.connRepo.FindPendingSent(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		conns[i].ProjectForViewer(viewerID)
	}
	return conns, nil
}
