package domain

import chatdomain "craft_marketplace_service/internal/chat/domain"

// ConnectionStatus lifecycle of a connection request. ACCEPTED and
// REJECTED are terminal.
type ConnectionStatus string

const (
	// StatusPending request sent, receiver has not decided
	StatusPending ConnectionStatus = "PENDING"
	// StatusAccepted receiver accepted, terminal
	StatusAccepted ConnectionStatus = "ACCEPTED"
	// StatusRejected receiver rejected, terminal
	StatusRejected ConnectionStatus = "REJECTED"
)

// RequiredMessageCount both parties must have sent at least this many
// messages in the room before a connection request is allowed
const RequiredMessageCount = 5

// Connection a designer/village connection request anchored to their room
type Connection struct {
	ConnectionID string           `bson:"_id" json:"connectionId"`
	RoomID       string           `bson:"room_id" json:"roomId"`
	Requester    chatdomain.Participant `bson:"requester" json:"requester"`
	Receiver     chatdomain.Participant `bson:"receiver" json:"receiver"`
	Status       ConnectionStatus `bson:"status" json:"status"`
	CreatedAt    string           `bson:"created_at" json:"createdAt"`
	UpdatedAt    string           `bson:"updated_at" json:"updatedAt"`

	// viewer projection, filled before returning to a client
	IsRequester    bool                  `bson:"-" json:"isRequester"`
	OtherPartyName string                `bson:"-" json:"otherPartyName,omitempty"`
	OtherPartyType chatdomain.SenderType `bson:"-" json:"otherPartyType,omitempty"`
}

// IsTerminal accepted and rejected connections never change again
func (c *Connection) IsTerminal() bool {
	return c.Status == StatusAccepted || c.Status == StatusRejected
}

// ProjectForViewer fill the viewer-relative fields
func (c *Connection) ProjectForViewer(viewerID string) {
	if c.Requester.UserID == viewerID {
		c.IsRequester = true
		c.OtherPartyName = c.Receiver.Name
		c.OtherPartyType = c.Receiver.Type
	} else {
		c.IsRequester = false
		c.OtherPartyName = c.Requester.Name
		c.OtherPartyType = c.Requester.Type
	}
}

// ConnectionEligibility derived view answering "can the viewer send a
// connection request for this room right now"
type ConnectionEligibility struct {
	RoomID            string `json:"roomId"`
	Eligible          bool   `json:"eligible"`
	AlreadyConnected  bool   `json:"alreadyConnected"`
	PendingRequest    bool   `json:"pendingRequest"`
	MyMessageCount    int64  `json:"myMessageCount"`
	OtherMessageCount int64  `json:"otherMessageCount"`
	RequiredCount     int64  `json:"requiredCount"`
	Reason            string `json:"reason,omitempty"`
}

// SendConnectionRequest payload for POST /api/connections
type SendConnectionRequest struct {
	RoomID string `json:"roomId"`
}
