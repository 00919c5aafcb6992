package client

import (
	"sync"
	"time"

	conndomain "craft_marketplace_service/internal/connection/domain"
	"craft_marketplace_service/pkg/logger"

	"go.uber.org/zap"
)

// EligibilityState fetch lifecycle of the open room's eligibility
type EligibilityState string

const (
	// EligUnknown no room bound yet
	EligUnknown EligibilityState = "unknown"
	// EligLoading fetch in flight for the bound room
	EligLoading EligibilityState = "loading"
	// EligKnown last fetch landed
	EligKnown EligibilityState = "known"
)

// DialogStep connection dialog progression
type DialogStep string

const (
	// StepNone dialog closed
	StepNone DialogStep = ""
	// StepConfirm user is looking at the confirm prompt
	StepConfirm DialogStep = "confirm"
	// StepRequestSent request accepted by the server, waiting on the
	// other party
	StepRequestSent DialogStep = "request-sent"
	// StepConnected the parties are connected
	StepConnected DialogStep = "connected"
)

// Eligibility timer defaults
const (
	// EligibilityDebounce silent refetch delay after message-count changes
	EligibilityDebounce = 500 * time.Millisecond
	// PendingPollInterval poll cadence while a request is pending
	PendingPollInterval = 5 * time.Second
)

// EligibilityMachine tracks whether the open room can be upgraded to a
// connection, polls while a request is pending, and announces acceptance
// on the bus.
type EligibilityMachine struct {
	api API
	bus *Bus

	// Debounce and PollInterval overridable for tests
	Debounce     time.Duration
	PollInterval time.Duration

	// OnChange runs after state, eligibility or dialog step change
	OnChange func()

	mu        sync.Mutex
	state     EligibilityState
	roomID    string
	current   *conndomain.ConnectionEligibility
	step      DialogStep
	debounce  *time.Timer
	pollStop  chan struct{}
	busCancel func()
}

// NewEligibilityMachine create EligibilityMachine and listen for local
// acceptances on the bus
func NewEligibilityMachine(api API, bus *Bus) *EligibilityMachine {
	m := &EligibilityMachine{
		api:          api,
		bus:          bus,
		Debounce:     EligibilityDebounce,
		PollInterval: PendingPollInterval,
		state:        EligUnknown,
	}
	m.busCancel = bus.Subscribe(EventConnectionAcceptedByMe, func(evt Event) {
		m.mu.Lock()
		match := evt.RoomID != "" && evt.RoomID == m.roomID
		if match {
			m.step = StepConnected
		}
		cb := m.OnChange
		m.mu.Unlock()
		if match {
			if cb != nil {
				cb()
			}
			m.refetch(evt.RoomID)
		}
	})
	return m
}

// State current fetch state
func (m *EligibilityMachine) State() EligibilityState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current last fetched eligibility, nil before the first fetch lands
func (m *EligibilityMachine) Current() *conndomain.ConnectionEligibility {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Step current dialog step
func (m *EligibilityMachine) Step() DialogStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// SetRoom bind to a room; drops every pending timer of the previous room
// and fetches fresh
func (m *EligibilityMachine) SetRoom(roomID string) {
	m.mu.Lock()
	m.roomID = roomID
	m.state = EligLoading
	m.current = nil
	m.step = StepNone
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
	m.stopPollLocked()
	cb := m.OnChange
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
	go m.refetch(roomID)
}

// NotifyMessageCountChanged debounce a silent refetch; counts only move
// the needle once eligibility is known
func (m *EligibilityMachine) NotifyMessageCountChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != EligKnown {
		return
	}
	roomID := m.roomID
	if m.debounce != nil {
		m.debounce.Stop()
	}
	m.debounce = time.AfterFunc(m.Debounce, func() {
		m.refetch(roomID)
	})
}

// refetch fetch eligibility for roomID; results for a room that is no
// longer bound are dropped
func (m *EligibilityMachine) refetch(roomID string) {
	elig, err := m.api.Eligibility(roomID)

	m.mu.Lock()
	if roomID != m.roomID {
		m.mu.Unlock()
		return
	}
	if err != nil {
		logger.Log.Warn("eligibility fetch failed", zap.String("roomID", roomID), zap.Error(err))
		if m.current == nil {
			m.state = EligUnknown
		}
		m.mu.Unlock()
		return
	}

	prev := m.current
	m.current = elig
	m.state = EligKnown

	accepted := prev != nil && prev.PendingRequest && elig.AlreadyConnected
	if accepted && m.step == StepRequestSent {
		m.step = StepConnected
	}

	if elig.PendingRequest {
		m.startPollLocked(roomID)
	} else {
		m.stopPollLocked()
	}
	cb := m.OnChange
	m.mu.Unlock()

	if accepted {
		m.announceAccepted(roomID)
	}
	if cb != nil {
		cb()
	}
}

// announceAccepted the other party accepted our pending request
func (m *EligibilityMachine) announceAccepted(roomID string) {
	var conn *conndomain.Connection
	conns, err := m.api.ListConnections()
	if err != nil {
		logger.Log.Warn("connection list fetch failed", zap.Error(err))
	} else {
		for i := range conns {
			if conns[i].RoomID == roomID {
				conn = &conns[i]
				break
			}
		}
	}

	m.bus.Publish(Event{Name: EventConnectionAccepted, RoomID: roomID, Connection: conn})
	m.bus.Publish(Event{Name: EventConnectionStatusChanged, RoomID: roomID, Connection: conn})
}

func (m *EligibilityMachine) startPollLocked(roomID string) {
	if m.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	m.pollStop = stop
	go func() {
		ticker := time.NewTicker(m.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.refetch(roomID)
			}
		}
	}()
}

func (m *EligibilityMachine) stopPollLocked() {
	if m.pollStop != nil {
		close(m.pollStop)
		m.pollStop = nil
	}
}

// OpenDialog start the connect flow; only an eligible room opens the
// confirm step
func (m *EligibilityMachine) OpenDialog() bool {
	m.mu.Lock()
	ok := m.state == EligKnown && m.current != nil && m.current.Eligible
	if ok {
		m.step = StepConfirm
	}
	cb := m.OnChange
	m.mu.Unlock()
	if ok && cb != nil {
		cb()
	}
	return ok
}

// Confirm send the request; on success the dialog advances to
// request-sent and eligibility refetches immediately
func (m *EligibilityMachine) Confirm() error {
	m.mu.Lock()
	roomID := m.roomID
	if m.step != StepConfirm {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if _, err := m.api.SendConnectionRequest(roomID); err != nil {
		return err
	}

	m.mu.Lock()
	if roomID == m.roomID {
		m.step = StepRequestSent
	}
	cb := m.OnChange
	m.mu.Unlock()
	if cb != nil {
		cb()
	}

	m.refetch(roomID)
	m.bus.Publish(Event{Name: EventConnectionStatusChanged, RoomID: roomID})
	return nil
}

// CloseDialog dismiss the dialog without touching the request state
func (m *EligibilityMachine) CloseDialog() {
	m.mu.Lock()
	m.step = StepNone
	cb := m.OnChange
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// AcceptIncoming accept a request the local user received and tell the
// rest of the client about it
func (m *EligibilityMachine) AcceptIncoming(connectionID string) (*conndomain.Connection, error) {
	conn, err := m.api.AcceptConnection(connectionID)
	if err != nil {
		return nil, err
	}
	m.bus.Publish(Event{Name: EventConnectionAcceptedByMe, RoomID: conn.RoomID, Connection: conn})
	m.bus.Publish(Event{Name: EventConnectionStatusChanged, RoomID: conn.RoomID, Connection: conn})
	return conn, nil
}

// Close drop timers and the bus subscription
func (m *EligibilityMachine) Close() {
	m.mu.Lock()
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
	m.stopPollLocked()
	m.roomID = ""
	m.mu.Unlock()
	if m.busCancel != nil {
		m.busCancel()
	}
}
