package app

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"craft_marketplace_service/internal/assistant/domain"
	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/localstore"
	"craft_marketplace_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Durable storage keys for the assistant state
const (
	SessionIDKey = "botcici_session_id"
	MessagesKey  = "botcici_messages"
)

// ErrNoSession actions need a session that only a first chat message
// creates
var ErrNoSession = fmt.Errorf("no assistant session yet")

// Session lazy assistant conversation. The session id is whatever the
// server hands back on the first send and both id and transcript persist
// locally across restarts.
type Session struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	store   *localstore.Store

	mu        sync.Mutex
	sessionID string
	messages  []domain.Message
	lastError bool

	// UserID optional marketplace user id sent with each message
	UserID int64

	// OnChange runs after the transcript changes
	OnChange func()
}

// NewSession create Session, restoring persisted id and transcript
func NewSession(baseURL string, store *localstore.Store, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Session{
		client:  &fasthttp.Client{},
		baseURL: baseURL,
		timeout: timeout,
		store:   store,
	}

	var sessionID string
	if err := store.Get(SessionIDKey, &sessionID); err == nil {
		s.sessionID = sessionID
	} else if err != localstore.ErrNotFound {
		logger.Log.Warn("assistant session load failed", zap.Error(err))
	}

	var messages []domain.Message
	if err := store.Get(MessagesKey, &messages); err == nil {
		s.messages = messages
	} else if err != localstore.ErrNotFound {
		logger.Log.Warn("assistant transcript load failed", zap.Error(err))
	}
	return s
}

// Messages transcript snapshot
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SessionID empty until the first successful send
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// LastError true when the most recent send failed
func (s *Session) LastError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Session) post(path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req.SetBody(b)

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return err
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("assistant %s: status %d", path, resp.StatusCode())
	}
	return json.Unmarshal(resp.Body(), out)
}

// SendMessage append the user message, call the assistant and append its
// reply. On failure a synthetic error reply keeps the transcript whole
// and the error flag stays up until a send succeeds.
func (s *Session) SendMessage(text string) (*domain.Message, error) {
	userMsg := domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: chatdomain.NowString(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, userMsg)
	sessionID := s.sessionID
	s.persistLocked()
	cb := s.OnChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}

	var resp domain.ChatResponse
	err := s.post("/api/chat", domain.ChatRequest{Message: text, SessionID: sessionID, UserID: s.UserID}, &resp)

	s.mu.Lock()
	defer func() {
		cb := s.OnChange
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
	}()

	if err != nil {
		logger.Log.Warn("assistant send failed", zap.Error(err))
		s.lastError = true
		errMsg := domain.Message{
			ID:        uuid.New().String(),
			Role:      domain.RoleAssistant,
			Content:   "Sorry, something went wrong. Please try again.",
			CreatedAt: chatdomain.NowString(),
			IsError:   true,
		}
		s.messages = append(s.messages, errMsg)
		s.persistLocked()
		return &errMsg, err
	}

	s.lastError = false
	if resp.SessionID != "" && resp.SessionID != s.sessionID {
		s.sessionID = resp.SessionID
		if err := s.store.Set(SessionIDKey, s.sessionID); err != nil {
			logger.Log.Warn("assistant session save failed", zap.Error(err))
		}
	}

	reply := domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleAssistant,
		Content:   resp.Response,
		CreatedAt: chatdomain.NowString(),
	}
	if resp.Intent != "" || len(resp.Recommendations) > 0 || len(resp.SuggestedQuestions) > 0 ||
		resp.Navigation != nil || len(resp.ExtractedInfo) > 0 {
		reply.Metadata = &domain.Metadata{
			MessageType:        resp.MessageType,
			Intent:             resp.Intent,
			Confidence:         resp.Confidence,
			ExtractedInfo:      resp.ExtractedInfo,
			Recommendations:    resp.Recommendations,
			SuggestedQuestions: resp.SuggestedQuestions,
			Navigation:         resp.Navigation,
		}
	}
	s.messages = append(s.messages, reply)
	s.persistLocked()
	return &reply, nil
}

// HandleAction run a recommendation interaction; without a session there
// is nothing to act on
func (s *Session) HandleAction(actionType string, villageIDs []int64, context map[string]interface{}) (*domain.ActionResponse, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		logger.Log.Warn("assistant action without session", zap.String("actionType", actionType))
		return nil, ErrNoSession
	}

	var resp domain.ActionResponse
	err := s.post("/api/chat/action", domain.ActionRequest{
		ActionType: actionType,
		VillageIDs: villageIDs,
		SessionID:  sessionID,
		Context:    context,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoadHistory fetch the server-side transcript of the current session
func (s *Session) LoadHistory(limit int) (*domain.HistoryResponse, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if limit <= 0 {
		limit = 20
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/api/chat/history/%s?limit=%d", s.baseURL, sessionID, limit))
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return nil, err
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("assistant history: status %d", resp.StatusCode())
	}

	var result domain.HistoryResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearChat best-effort server delete, then an unconditional local wipe
func (s *Session) ClearChat() {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	if sessionID != "" {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		req.SetRequestURI(fmt.Sprintf("%s/api/chat/history/%s", s.baseURL, sessionID))
		req.Header.SetMethod(fasthttp.MethodDelete)
		if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
			logger.Log.Warn("assistant history delete failed", zap.Error(err))
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	s.mu.Lock()
	s.sessionID = ""
	s.messages = nil
	s.lastError = false
	if err := s.store.Delete(SessionIDKey); err != nil {
		logger.Log.Warn("assistant session key delete failed", zap.Error(err))
	}
	if err := s.store.Delete(MessagesKey); err != nil {
		logger.Log.Warn("assistant transcript delete failed", zap.Error(err))
	}
	cb := s.OnChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Health is the assistant reachable
func (s *Session) Health() bool {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + "/health")
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return false
	}
	return resp.StatusCode() < 400
}

func (s *Session) persistLocked() {
	if err := s.store.Set(MessagesKey, s.messages); err != nil {
		logger.Log.Warn("assistant transcript save failed", zap.Error(err))
	}
}
