package app

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"
	"craft_marketplace_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler drives one websocket connection per client
type ChatWebsocketHandler struct {
	messageUC *MessageUseCase
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(messageUC *MessageUseCase) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		messageUC: messageUC,
	}
}

// wsSession per-connection state; one room subscription at a time,
// switching rooms cancels the previous one
type wsSession struct {
	conn   *websocket.Conn
	sender domain.Participant

	mu         sync.Mutex
	roomID     string
	roomCancel context.CancelFunc
}

func (s *wsSession) write(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := json.Marshal(v)
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

// HandleConnection entry point for the /ws/chat upgrade
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, ok := conn.Locals(middlewares.TokenUserID).(string)
	userName, _ := conn.Locals(middlewares.TokenUserName).(string)
	userType, _ := conn.Locals(middlewares.TokenUserType).(string)
	logger.Log.Info("websocket handle userID", zap.String("userID", userID), zap.String("ok", strconv.FormatBool(ok)))

	sess := &wsSession{
		conn: conn,
		sender: domain.Participant{
			UserID: userID,
			Name:   userName,
			Type:   domain.SenderType(userType),
		},
	}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", userID))
		sess.unsubscribe()
		conn.Close()
		cancel()
	}()

	// fiber handles close/ping/pong itself, SetXxxHandler taps them out
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// keepalive ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			h.sendError(sess, "unknown message type")
			continue
		}
		h.textMessageAction(ctx, sess, message)
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, sess *wsSession, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {
	case domain.Subscribe:
		if req.RoomID == "" {
			resp.Error = "roomId is required"
			break
		}
		h.subscribe(sess, req.RoomID)
		resp.Success = true
		resp.Payload["roomId"] = req.RoomID

	case domain.Unsubscribe:
		sess.unsubscribe()
		resp.Success = true
		resp.Payload["roomId"] = req.RoomID

	case domain.SendMessage:
		sent, err := h.messageUC.Send(ctx, req.RoomID, sess.sender, domain.SendMessageRequest{
			Content:      req.Content,
			MessageType:  req.MessageType,
			FileURL:      req.FileURL,
			FileName:     req.FileName,
			FileSize:     req.FileSize,
			FileType:     req.FileType,
			ThumbnailURL: req.ThumbnailURL,
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["messageId"] = sent.MessageID
		}

	case domain.Typing:
		err := h.messageUC.Typing(req.RoomID, domain.TypingIndicator{
			RoomID:   req.RoomID,
			UserID:   sess.sender.UserID,
			UserName: sess.sender.Name,
			Typing:   req.Typing,
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	default:
		h.sendError(sess, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ",
			zap.String("userID", sess.sender.UserID),
			zap.String("action", string(req.Action)),
			zap.String("err", resp.Error))
	}
	sess.write(resp)
}

// subscribe attach the connection to the room's message and typing
// channels; a previous room subscription is canceled first
func (h *ChatWebsocketHandler) subscribe(sess *wsSession, roomID string) {
	sess.unsubscribe()

	roomCtx, cancel := context.WithCancel(context.Background())
	sess.mu.Lock()
	sess.roomID = roomID
	sess.roomCancel = cancel
	sess.mu.Unlock()

	push := func(evt domain.WSEvent) {
		sess.write(evt)
	}
	h.messageUC.pubSub.Subscribe(roomCtx, domain.MessageTopic(roomID), push)
	h.messageUC.pubSub.Subscribe(roomCtx, domain.TypingTopic(roomID), push)
}

func (s *wsSession) unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomCancel != nil {
		s.roomCancel()
		s.roomCancel = nil
		s.roomID = ""
	}
}

func (h *ChatWebsocketHandler) sendError(sess *wsSession, errorMsg string) {
	sess.write(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{"error": errorMsg},
	})
}
