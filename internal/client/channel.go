package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChannelState transport connection state
type ChannelState string

const (
	// StateDisconnected no socket, not trying
	StateDisconnected ChannelState = "disconnected"
	// StateConnecting dial in flight
	StateConnecting ChannelState = "connecting"
	// StateConnected socket up and subscribed
	StateConnected ChannelState = "connected"
)

// ReconnectDelay fixed wait between reconnect attempts
const ReconnectDelay = 5 * time.Second

// Channel one websocket transport bound to a room. Reconnects forever
// with a fixed delay while enabled and resubscribes after every dial.
type Channel struct {
	wsURL string
	token string

	// ReconnectDelay overridable for tests, defaults to ReconnectDelay
	Delay time.Duration

	OnMessage     func(msg chatdomain.ChatMessage)
	OnTyping      func(ind chatdomain.TypingIndicator)
	OnStateChange func(state ChannelState)

	mu      sync.Mutex
	state   ChannelState
	roomID  string
	conn    *websocket.Conn
	enabled bool
	done    chan struct{}
}

// NewChannel create Channel
func NewChannel(wsURL, token string) *Channel {
	return &Channel{
		wsURL: wsURL,
		token: token,
		Delay: ReconnectDelay,
		state: StateDisconnected,
	}
}

// State current transport state
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(s ChannelState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	cb := c.OnStateChange
	c.mu.Unlock()
	if changed && cb != nil {
		cb(s)
	}
}

// Connect start the dial/read/reconnect loop for a room. Without a token
// the channel stays disconnected. Connecting an already running channel
// to a different room tears the current session down and redials.
func (c *Channel) Connect(roomID string) {
	if c.token == "" {
		logger.Log.Warn("chat channel has no auth token, staying disconnected")
		return
	}

	c.mu.Lock()
	if c.enabled {
		if c.roomID == roomID {
			c.mu.Unlock()
			return
		}
		current := c.roomID
		c.mu.Unlock()
		logger.Log.Warn("chat channel rebinding to another room",
			zap.String("from", current), zap.String("to", roomID))
		c.Close()
		c.mu.Lock()
	}
	if c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = true
	c.roomID = roomID
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.run(roomID, done)
}

func (c *Channel) run(roomID string, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		c.setState(StateConnecting)
		url := fmt.Sprintf("%s/ws/chat?auth=%s", c.wsURL, c.token)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			logger.Log.Errorf("chat channel dial error:", err)
			select {
			case <-done:
				return
			default:
			}
			c.setState(StateDisconnected)
			select {
			case <-done:
				return
			case <-time.After(c.Delay):
				continue
			}
		}

		// a dial that raced Close must not hijack a newer session
		select {
		case <-done:
			conn.Close()
			return
		default:
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		// every (re)connect subscribes the room's topics again
		if err := sendOn(conn, chatdomain.WSRequest{Action: chatdomain.Subscribe, RoomID: roomID}); err != nil {
			logger.Log.Errorf("chat channel subscribe error:", err)
		}
		c.setState(StateConnected)

		c.readLoop(conn, roomID)

		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()

		select {
		case <-done:
			return
		default:
		}
		c.setState(StateDisconnected)

		select {
		case <-done:
			return
		case <-time.After(c.Delay):
		}
	}
}

func (c *Channel) readLoop(conn *websocket.Conn, roomID string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Log.Infof("chat channel read closed:", err)
			return
		}

		var evt chatdomain.WSEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Log.Errorf("chat channel unmarshal error:", err)
			continue
		}
		if evt.Topic == "" {
			// action ack, not a topic push
			continue
		}

		switch {
		case evt.Topic == chatdomain.TypingTopic(roomID):
			var ind chatdomain.TypingIndicator
			if err := json.Unmarshal(evt.Payload, &ind); err != nil {
				logger.Log.Errorf("typing payload unmarshal error:", err)
				continue
			}
			if c.OnTyping != nil {
				c.OnTyping(ind)
			}
		case evt.Topic == chatdomain.MessageTopic(roomID):
			var msg chatdomain.ChatMessage
			if err := json.Unmarshal(evt.Payload, &msg); err != nil {
				logger.Log.Errorf("message payload unmarshal error:", err)
				continue
			}
			if c.OnMessage != nil {
				c.OnMessage(msg)
			}
		default:
			logger.Log.Debug("chat channel event for stale room", zap.String("topic", evt.Topic))
		}
	}
}

func (c *Channel) send(req chatdomain.WSRequest) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	return sendOn(conn, req)
}

func sendOn(conn *websocket.Conn, req chatdomain.WSRequest) error {
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

// PublishMessage send a message over the socket. A warn-and-drop no-op
// when not connected; the caller falls back to REST.
func (c *Channel) PublishMessage(req chatdomain.SendMessageRequest) bool {
	c.mu.Lock()
	connected := c.state == StateConnected
	roomID := c.roomID
	c.mu.Unlock()
	if !connected {
		logger.Log.Warn("chat channel not connected, message not published", zap.String("roomID", roomID))
		return false
	}

	msgType := req.MessageType
	if msgType == "" {
		msgType = chatdomain.DeriveMessageType(req.FileType)
	}
	err := c.send(chatdomain.WSRequest{
		Action:       chatdomain.SendMessage,
		RoomID:       roomID,
		Content:      req.Content,
		MessageType:  msgType,
		FileURL:      req.FileURL,
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		FileType:     req.FileType,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		logger.Log.Errorf("publish message error:", err)
		return false
	}
	return true
}

// PublishTyping send a typing indicator, silently dropped when not
// connected
func (c *Channel) PublishTyping(typing bool) {
	c.mu.Lock()
	connected := c.state == StateConnected
	roomID := c.roomID
	c.mu.Unlock()
	if !connected {
		return
	}
	if err := c.send(chatdomain.WSRequest{
		Action: chatdomain.Typing,
		RoomID: roomID,
		Typing: typing,
	}); err != nil {
		logger.Log.Errorf("publish typing error:", err)
	}
}

// Close stop reconnecting and tear the socket down
func (c *Channel) Close() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = false
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}
	c.setState(StateDisconnected)
}
