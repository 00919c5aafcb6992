package client

import (
	"path/filepath"
	"testing"

	conndomain "craft_marketplace_service/internal/connection/domain"
	"craft_marketplace_service/pkg/localstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*localstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := localstore.Open(path)
	require.NoError(t, err)
	return store, path
}

func acceptedConn(id string) *conndomain.Connection {
	return &conndomain.Connection{
		ConnectionID:   id,
		RoomID:         "room-1",
		Status:         conndomain.StatusAccepted,
		OtherPartyName: "Bat Trang",
	}
}

func TestNotifications_AddAndDedupe(t *testing.T) {
	store, _ := testStore(t)
	n := NewNotifications(store, NewBus())

	n.Add(acceptedConn("c1"))
	n.Add(acceptedConn("c1"))
	n.Add(acceptedConn("c2"))

	items := n.List()
	assert.Len(t, items, 2)
	assert.Equal(t, "c1", items[0].ConnectionID)
	assert.Equal(t, "Bat Trang", items[0].OtherPartyName)
}

func TestNotifications_Dismiss(t *testing.T) {
	store, _ := testStore(t)
	n := NewNotifications(store, NewBus())

	n.Add(acceptedConn("c1"))
	n.Add(acceptedConn("c2"))
	n.Dismiss("c1")

	items := n.List()
	assert.Len(t, items, 1)
	assert.Equal(t, "c2", items[0].ConnectionID)
}

func TestNotifications_SurvivesReload(t *testing.T) {
	store, path := testStore(t)
	n := NewNotifications(store, NewBus())
	n.Add(acceptedConn("c1"))

	// a fresh store over the same file sees the persisted log
	reloaded, err := localstore.Open(path)
	require.NoError(t, err)
	n2 := NewNotifications(reloaded, NewBus())

	items := n2.List()
	assert.Len(t, items, 1)
	assert.Equal(t, "c1", items[0].ConnectionID)
}

func TestNotifications_BusFeed(t *testing.T) {
	store, _ := testStore(t)
	bus := NewBus()
	n := NewNotifications(store, bus)

	bus.Publish(Event{
		Name:       EventConnectionAccepted,
		RoomID:     "room-1",
		Connection: acceptedConn("c9"),
	})
	// event without a resolved connection carries nothing to record
	bus.Publish(Event{Name: EventConnectionAccepted, RoomID: "room-1"})

	items := n.List()
	assert.Len(t, items, 1)
	assert.Equal(t, "c9", items[0].ConnectionID)
}
