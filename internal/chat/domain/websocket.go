package domain

import (
	"encoding/json"
	"fmt"
)

// Action websocket request action
type Action string

const (
	// Subscribe websocket action subscribe, attach to a room's topics
	Subscribe Action = "subscribe"
	// Unsubscribe websocket action unsubscribe, detach from a room
	Unsubscribe Action = "unsubscribe"
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// Typing websocket action typing
	Typing Action = "typing"
)

// Topic names pushed back to clients
const (
	// TopicMessage room message stream, "room/<id>"
	TopicMessage = "room/%s"
	// TopicTyping room typing stream, "room/<id>/typing"
	TopicTyping = "room/%s/typing"
)

// MessageTopic channel name for a room's message stream
func MessageTopic(roomID string) string {
	return fmt.Sprintf(TopicMessage, roomID)
}

// TypingTopic channel name for a room's typing stream
func TypingTopic(roomID string) string {
	return fmt.Sprintf(TopicTyping, roomID)
}

// WSRequest websocket Request
type WSRequest struct {
	Action Action `json:"action"`
	RoomID string `json:"roomId"`

	// send_message fields
	Content     string      `json:"content,omitempty"`
	MessageType MessageType `json:"messageType,omitempty"`

	FileURL      string `json:"fileUrl,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FileType     string `json:"fileType,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// typing field
	Typing bool `json:"typing,omitempty"`
}

// WSEvent websocket push to clients; Payload is the JSON-encoded
// ChatMessage or TypingIndicator depending on the topic
type WSEvent struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// WSResponse websocket Response for client actions
type WSResponse struct {
	Action  Action                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
