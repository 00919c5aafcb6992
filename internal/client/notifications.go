package client

import (
	"sync"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	conndomain "craft_marketplace_service/internal/connection/domain"
	"craft_marketplace_service/pkg/localstore"
	"craft_marketplace_service/pkg/logger"

	"go.uber.org/zap"
)

// notificationsKey storage key for the accepted-connection log
const notificationsKey = "acceptedConnectionNotifications"

// AcceptedNotification one accepted connection the user has not
// dismissed yet
type AcceptedNotification struct {
	ConnectionID   string `json:"connectionId"`
	RoomID         string `json:"roomId"`
	OtherPartyName string `json:"otherPartyName"`
	OtherPartyType string `json:"otherPartyType"`
	AcceptedAt     string `json:"acceptedAt"`
}

// Notifications durable accepted-connection log, deduped by connection
// id, survives restarts
type Notifications struct {
	mu    sync.Mutex
	store *localstore.Store
	items []AcceptedNotification

	// OnChange runs after the list changes
	OnChange func()
}

// NewNotifications load the persisted log and subscribe to acceptance
// events
func NewNotifications(store *localstore.Store, bus *Bus) *Notifications {
	n := &Notifications{store: store}

	var items []AcceptedNotification
	if err := store.Get(notificationsKey, &items); err != nil && err != localstore.ErrNotFound {
		logger.Log.Warn("notification log load failed", zap.Error(err))
	}
	n.items = items

	bus.Subscribe(EventConnectionAccepted, func(evt Event) {
		if evt.Connection == nil {
			return
		}
		n.Add(evt.Connection)
	})
	return n
}

// List snapshot
func (n *Notifications) List() []AcceptedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]AcceptedNotification, len(n.items))
	copy(out, n.items)
	return out
}

// Add record an accepted connection once; repeats of the same connection
// id are dropped
func (n *Notifications) Add(conn *conndomain.Connection) {
	n.mu.Lock()
	for _, item := range n.items {
		if item.ConnectionID == conn.ConnectionID {
			n.mu.Unlock()
			return
		}
	}
	n.items = append(n.items, AcceptedNotification{
		ConnectionID:   conn.ConnectionID,
		RoomID:         conn.RoomID,
		OtherPartyName: conn.OtherPartyName,
		OtherPartyType: string(conn.OtherPartyType),
		AcceptedAt:     chatdomain.NowString(),
	})
	n.persistLocked()
	cb := n.OnChange
	n.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Dismiss drop one notification by connection id
func (n *Notifications) Dismiss(connectionID string) {
	n.mu.Lock()
	kept := n.items[:0]
	for _, item := range n.items {
		if item.ConnectionID != connectionID {
			kept = append(kept, item)
		}
	}
	changed := len(kept) != len(n.items)
	n.items = kept
	if changed {
		n.persistLocked()
	}
	cb := n.OnChange
	n.mu.Unlock()
	if changed && cb != nil {
		cb()
	}
}

func (n *Notifications) persistLocked() {
	if err := n.store.Set(notificationsKey, n.items); err != nil {
		logger.Log.Warn("notification log save failed", zap.Error(err))
	}
}
