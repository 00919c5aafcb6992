package client

import (
	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"

	"go.uber.org/zap"
)

// transport the part of Channel the send path needs
type transport interface {
	State() ChannelState
	PublishMessage(req chatdomain.SendMessageRequest) bool
}

// Conversation composes the send path for one open room: over the socket
// with an optimistic placeholder when connected, straight REST otherwise.
type Conversation struct {
	api     API
	channel transport
	store   *MessageStore
	roomID  string
}

// NewConversation create Conversation
func NewConversation(api API, channel transport, store *MessageStore, roomID string) *Conversation {
	return &Conversation{
		api:     api,
		channel: channel,
		store:   store,
		roomID:  roomID,
	}
}

// Send deliver one message. Connected: an optimistic placeholder lands in
// the store immediately and the socket echo reconciles it. Not connected:
// no placeholder, the REST response is appended directly as confirmed.
func (c *Conversation) Send(req chatdomain.SendMessageRequest) error {
	if c.channel.State() == StateConnected {
		optimistic := c.store.AppendOptimistic(req)
		if c.channel.PublishMessage(req) {
			return nil
		}
		// socket dropped under us; confirm the placeholder over REST
		logger.Log.Warn("socket send failed, falling back to rest", zap.String("roomID", c.roomID))
		confirmed, err := c.api.SendMessage(c.roomID, req)
		if err != nil {
			return err
		}
		c.store.AppendConfirmed(optimistic.MessageID, *confirmed)
		return nil
	}

	confirmed, err := c.api.SendMessage(c.roomID, req)
	if err != nil {
		return err
	}
	c.store.AppendConfirmed("", *confirmed)
	return nil
}
