package bdd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"testing"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	connapp "craft_marketplace_service/internal/connection/app"
	conndomain "craft_marketplace_service/internal/connection/domain"
	"craft_marketplace_service/pkg/logger"

	"github.com/cucumber/godog"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

func TestConnectionWorkflow(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeConnectionScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"featureFiles/connection_workflow.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("connection workflow feature failed")
	}
}

// connectionWorld in-memory state for one scenario
type connectionWorld struct {
	roomRepo *memRoomRepo
	msgRepo  *memMessageRepo
	connRepo *memConnRepo
	uc       *connapp.ConnectionUseCase

	room *chatdomain.ChatRoom

	lastEligibility *conndomain.ConnectionEligibility
	lastConnection  *conndomain.Connection
	lastErr         error
}

func (w *connectionWorld) participantByName(name string) (chatdomain.Participant, error) {
	switch name {
	case w.room.Designer.Name:
		return w.room.Designer, nil
	case w.room.Village.Name:
		return w.room.Village, nil
	}
	return chatdomain.Participant{}, fmt.Errorf("unknown participant %q", name)
}

func (w *connectionWorld) aChatRoomBetween(designerName, villageName string) error {
	w.room = &chatdomain.ChatRoom{
		RoomID:   "room-bdd",
		Designer: chatdomain.Participant{UserID: "designer-1", Name: designerName, Type: chatdomain.SenderDesigner},
		Village:  chatdomain.Participant{UserID: "village-1", Name: villageName, Type: chatdomain.SenderVillage},
	}
	w.roomRepo.rooms[w.room.RoomID] = w.room
	return nil
}

func (w *connectionWorld) hasSentMessages(nameA string, countA int, nameB string, countB int) error {
	a, err := w.participantByName(nameA)
	if err != nil {
		return err
	}
	b, err := w.participantByName(nameB)
	if err != nil {
		return err
	}
	w.msgRepo.setCount(w.room.RoomID, a.UserID, int64(countA))
	w.msgRepo.setCount(w.room.RoomID, b.UserID, int64(countB))
	return nil
}

func (w *connectionWorld) checksEligibility(name string) error {
	p, err := w.participantByName(name)
	if err != nil {
		return err
	}
	w.lastEligibility, w.lastErr = w.uc.Eligibility(context.Background(), w.room.RoomID, p.UserID)
	return w.lastErr
}

func (w *connectionWorld) roomIsEligible() error {
	if err := w.refreshEligibility(); err != nil {
		return err
	}
	if !w.lastEligibility.Eligible {
		return fmt.Errorf("expected eligible, got reason %q", w.lastEligibility.Reason)
	}
	return nil
}

func (w *connectionWorld) roomIsNotEligible() error {
	if err := w.refreshEligibility(); err != nil {
		return err
	}
	if w.lastEligibility.Eligible {
		return fmt.Errorf("expected not eligible")
	}
	return nil
}

func (w *connectionWorld) refreshEligibility() error {
	elig, err := w.uc.Eligibility(context.Background(), w.room.RoomID, w.room.Designer.UserID)
	if err != nil {
		return err
	}
	w.lastEligibility = elig
	return nil
}

func (w *connectionWorld) sendsRequest(name string) error {
	p, err := w.participantByName(name)
	if err != nil {
		return err
	}
	w.lastConnection, w.lastErr = w.uc.SendRequest(context.Background(), w.room.RoomID, p.UserID)
	return w.lastErr
}

func (w *connectionWorld) hasPendingReceived(name string, count int) error {
	p, err := w.participantByName(name)
	if err != nil {
		return err
	}
	pending, err := w.uc.ListPendingReceived(context.Background(), p.UserID)
	if err != nil {
		return err
	}
	if len(pending) != count {
		return fmt.Errorf("expected %d pending requests, got %d", count, len(pending))
	}
	return nil
}

func (w *connectionWorld) acceptsRequest(name string) error {
	p, err := w.participantByName(name)
	if err != nil {
		return err
	}
	w.lastConnection, w.lastErr = w.uc.Accept(context.Background(), w.lastConnection.ConnectionID, p.UserID)
	return w.lastErr
}

func (w *connectionWorld) rejectsRequest(name string) error {
	p, err := w.participantByName(name)
	if err != nil {
		return err
	}
	w.lastConnection, w.lastErr = w.uc.Reject(context.Background(), w.lastConnection.ConnectionID, p.UserID)
	return w.lastErr
}

func (w *connectionWorld) triesToAccept(name string) error {
	p, err := w.participantByName(name)
	if err != nil {
		return err
	}
	_, w.lastErr = w.uc.Accept(context.Background(), w.lastConnection.ConnectionID, p.UserID)
	return nil
}

func (w *connectionWorld) partiesAreConnected() error {
	accepted, err := w.uc.ListAccepted(context.Background(), w.room.Designer.UserID)
	if err != nil {
		return err
	}
	if len(accepted) != 1 {
		return fmt.Errorf("expected 1 accepted connection, got %d", len(accepted))
	}
	return nil
}

func (w *connectionWorld) partiesAreNotConnected() error {
	accepted, err := w.uc.ListAccepted(context.Background(), w.room.Designer.UserID)
	if err != nil {
		return err
	}
	if len(accepted) != 0 {
		return fmt.Errorf("expected no accepted connections, got %d", len(accepted))
	}
	return nil
}

func (w *connectionWorld) decisionIsRefused() error {
	if w.lastErr == nil {
		return fmt.Errorf("expected the decision to fail")
	}
	return nil
}

// InitializeConnectionScenario wire steps against a fresh in-memory world
func InitializeConnectionScenario(ctx *godog.ScenarioContext) {
	w := &connectionWorld{}
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		w.roomRepo = newMemRoomRepo()
		w.msgRepo = newMemMessageRepo()
		w.connRepo = newMemConnRepo()
		w.uc = connapp.NewConnectionUseCase(w.connRepo, w.roomRepo, w.msgRepo, 0)
		w.room = nil
		w.lastEligibility = nil
		w.lastConnection = nil
		w.lastErr = nil
		return c, nil
	})

	ctx.Step(`^a chat room between designer "([^"]*)" and village "([^"]*)"$`, w.aChatRoomBetween)
	ctx.Step(`^"([^"]*)" has sent (\d+) messages and "([^"]*)" has sent (\d+) messages$`, w.hasSentMessages)
	ctx.Step(`^"([^"]*)" checks connection eligibility$`, w.checksEligibility)
	ctx.Step(`^the room is eligible for a connection request$`, w.roomIsEligible)
	ctx.Step(`^the room is not eligible for a connection request$`, w.roomIsNotEligible)
	ctx.Step(`^"([^"]*)" sends a connection request$`, w.sendsRequest)
	ctx.Step(`^"([^"]*)" has (\d+) pending received request$`, w.hasPendingReceived)
	ctx.Step(`^"([^"]*)" accepts the request$`, w.acceptsRequest)
	ctx.Step(`^"([^"]*)" rejects the request$`, w.rejectsRequest)
	ctx.Step(`^"([^"]*)" tries to accept the request$`, w.triesToAccept)
	ctx.Step(`^the parties are connected$`, w.partiesAreConnected)
	ctx.Step(`^the parties are not connected$`, w.partiesAreNotConnected)
	ctx.Step(`^the decision is refused$`, w.decisionIsRefused)
}

type memRoomRepo struct {
	rooms map[string]*chatdomain.ChatRoom
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: map[string]*chatdomain.ChatRoom{}}
}

func (r *memRoomRepo) GetOrCreate(_ context.Context, designer, village chatdomain.Participant) (*chatdomain.ChatRoom, error) {
	for _, room := range r.rooms {
		if room.Designer.UserID == designer.UserID && room.Village.UserID == village.UserID {
			return room, nil
		}
	}
	room := &chatdomain.ChatRoom{
		RoomID:   fmt.Sprintf("room-%d", len(r.rooms)+1),
		Designer: designer,
		Village:  village,
	}
	r.rooms[room.RoomID] = room
	return room, nil
}

func (r *memRoomRepo) FindByID(_ context.Context, roomID string) (*chatdomain.ChatRoom, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s not found", roomID)
	}
	return room, nil
}

func (r *memRoomRepo) FindForUser(_ context.Context, userID string, _, _ int) ([]chatdomain.ChatRoom, int64, error) {
	var out []chatdomain.ChatRoom
	for _, room := range r.rooms {
		if room.Designer.UserID == userID || room.Village.UserID == userID {
			out = append(out, *room)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memRoomRepo) UpdatePreview(_ context.Context, _ string, _ *chatdomain.ChatMessage, _ string) error {
	return nil
}

func (r *memRoomRepo) ResetUnread(_ context.Context, _, _ string) error {
	return nil
}

type memMessageRepo struct {
	counts map[string]int64
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{counts: map[string]int64{}}
}

func (r *memMessageRepo) setCount(roomID, senderID string, n int64) {
	r.counts[roomID+"/"+senderID] = n
}

func (r *memMessageRepo) Insert(_ context.Context, msg *chatdomain.ChatMessage) error {
	r.counts[msg.RoomID+"/"+msg.SenderID]++
	return nil
}

func (r *memMessageRepo) FindPage(_ context.Context, _ string, _, _ int) (*chatdomain.MessagePage, error) {
	return &chatdomain.MessagePage{First: true, Last: true}, nil
}

func (r *memMessageRepo) CountBySender(_ context.Context, roomID, senderID string) (int64, error) {
	return r.counts[roomID+"/"+senderID], nil
}

func (r *memMessageRepo) MarkAllRead(_ context.Context, _, _ string) error {
	return nil
}

type memConnRepo struct {
	conns map[string]*conndomain.Connection
}

func newMemConnRepo() *memConnRepo {
	return &memConnRepo{conns: map[string]*conndomain.Connection{}}
}

func (r *memConnRepo) Create(_ context.Context, conn *conndomain.Connection) error {
	cp := *conn
	r.conns[conn.ConnectionID] = &cp
	return nil
}

func (r *memConnRepo) FindByID(_ context.Context, connectionID string) (*conndomain.Connection, error) {
	conn, ok := r.conns[connectionID]
	if !ok {
		return nil, fmt.Errorf("connection %s not found", connectionID)
	}
	cp := *conn
	return &cp, nil
}

func (r *memConnRepo) FindByRoom(_ context.Context, roomID string) (*conndomain.Connection, error) {
	var newest *conndomain.Connection
	for _, conn := range r.conns {
		if conn.RoomID != roomID || conn.Status == conndomain.StatusRejected {
			continue
		}
		if newest == nil || conn.CreatedAt > newest.CreatedAt {
			newest = conn
		}
	}
	if newest == nil {
		return nil, nil
	}
	cp := *newest
	return &cp, nil
}

func (r *memConnRepo) filter(keep func(*conndomain.Connection) bool) []conndomain.Connection {
	var out []conndomain.Connection
	for _, conn := range r.conns {
		if keep(conn) {
			out = append(out, *conn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func (r *memConnRepo) FindPendingReceived(_ context.Context, userID string) ([]conndomain.Connection, error) {
	return r.filter(func(c *conndomain.Connection) bool {
		return c.Status == conndomain.StatusPending && c.Receiver.UserID == userID
	}), nil
}

func (r *memConnRepo) FindPendingSent(_ context.Context, userID string) ([]conndomain.Connection, error) {
	return r.filter(func(c *conndomain.Connection) bool {
		return c.Status == conndomain.StatusPending && c.Requester.UserID == userID
	}), nil
}

func (r *memConnRepo) FindAccepted(_ context.Context, userID string) ([]conndomain.Connection, error) {
	return r.filter(func(c *conndomain.Connection) bool {
		return c.Status == conndomain.StatusAccepted &&
			(c.Requester.UserID == userID || c.Receiver.UserID == userID)
	}), nil
}

func (r *memConnRepo) UpdateStatus(_ context.Context, connectionID string, status conndomain.ConnectionStatus, updatedAt string) (bool, error) {
	conn, ok := r.conns[connectionID]
	if !ok || conn.Status != conndomain.StatusPending {
		return false, nil
	}
	conn.Status = status
	conn.UpdatedAt = updatedAt
	return true, nil
}
