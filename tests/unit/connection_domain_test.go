package unit

import (
	"testing"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/internal/connection/domain"

	"github.com/stretchr/testify/assert"
)

func TestConnectionIsTerminal(t *testing.T) {
	conn := domain.Connection{Status: domain.StatusPending}
	assert.False(t, conn.IsTerminal(), "pending connection can still be decided")

	conn.Status = domain.StatusAccepted
	assert.True(t, conn.IsTerminal(), "accepted connection never changes again")

	conn.Status = domain.StatusRejected
	assert.True(t, conn.IsTerminal(), "rejected connection never changes again")
}

func TestConnectionProjectForViewer(t *testing.T) {
	conn := domain.Connection{
		Requester: chatdomain.Participant{UserID: "d1", Name: "Mina", Type: chatdomain.SenderDesigner},
		Receiver:  chatdomain.Participant{UserID: "v1", Name: "Bat Trang", Type: chatdomain.SenderVillage},
	}

	asRequester := conn
	asRequester.ProjectForViewer("d1")
	assert.True(t, asRequester.IsRequester)
	assert.Equal(t, "Bat Trang", asRequester.OtherPartyName)
	assert.Equal(t, chatdomain.SenderVillage, asRequester.OtherPartyType)

	asReceiver := conn
	asReceiver.ProjectForViewer("v1")
	assert.False(t, asReceiver.IsRequester)
	assert.Equal(t, "Mina", asReceiver.OtherPartyName)
	assert.Equal(t, chatdomain.SenderDesigner, asReceiver.OtherPartyType)
}
