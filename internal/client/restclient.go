package client

import (
	"encoding/json"
	"fmt"
	"time"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	conndomain "craft_marketplace_service/internal/connection/domain"
	errprocess "craft_marketplace_service/pkg/err"

	"github.com/valyala/fasthttp"
)

// API server surface the client orchestrators talk to
type API interface {
	ListRooms(page, size int) (*chatdomain.RoomPage, error)
	StartChat(req chatdomain.StartChatRequest) (*chatdomain.ChatRoom, error)
	GetMessages(roomID string, page, size int) (*chatdomain.MessagePage, error)
	SendMessage(roomID string, req chatdomain.SendMessageRequest) (*chatdomain.ChatMessage, error)
	MarkRead(roomID string) error
	Eligibility(roomID string) (*conndomain.ConnectionEligibility, error)
	SendConnectionRequest(roomID string) (*conndomain.Connection, error)
	AcceptConnection(connectionID string) (*conndomain.Connection, error)
	RejectConnection(connectionID string) (*conndomain.Connection, error)
	ListConnections() ([]conndomain.Connection, error)
	PendingReceived() ([]conndomain.Connection, error)
	PendingSent() ([]conndomain.Connection, error)
}

// RestClient fasthttp-backed API client with a bearer token
type RestClient struct {
	client  *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
}

// NewRestClient create RestClient
func NewRestClient(baseURL, token string, timeout time.Duration) *RestClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RestClient{
		client:  &fasthttp.Client{},
		baseURL: baseURL,
		token:   token,
		timeout: timeout,
	}
}

func (c *RestClient) do(method, path string, body interface{}, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return err
	}
	if resp.StatusCode() >= 400 {
		return errprocess.Set(fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode(), resp.Body()))
	}
	if out != nil {
		return json.Unmarshal(resp.Body(), out)
	}
	return nil
}

// ListRooms page the caller's rooms
func (c *RestClient) ListRooms(page, size int) (*chatdomain.RoomPage, error) {
	var result chatdomain.RoomPage
	path := fmt.Sprintf("/api/chat/rooms?page=%d&size=%d", page, size)
	if err := c.do(fasthttp.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartChat idempotent get-or-create of the room with the other party
func (c *RestClient) StartChat(req chatdomain.StartChatRequest) (*chatdomain.ChatRoom, error) {
	var result chatdomain.ChatRoom
	if err := c.do(fasthttp.MethodPost, "/api/chat/rooms", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMessages one page of room history, newest first
func (c *RestClient) GetMessages(roomID string, page, size int) (*chatdomain.MessagePage, error) {
	var result chatdomain.MessagePage
	path := fmt.Sprintf("/api/chat/rooms/%s/messages?page=%d&size=%d", roomID, page, size)
	if err := c.do(fasthttp.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMessage REST fallback send path
func (c *RestClient) SendMessage(roomID string, req chatdomain.SendMessageRequest) (*chatdomain.ChatMessage, error) {
	var result chatdomain.ChatMessage
	path := fmt.Sprintf("/api/chat/rooms/%s/messages", roomID)
	if err := c.do(fasthttp.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkRead mark the whole room read
func (c *RestClient) MarkRead(roomID string) error {
	path := fmt.Sprintf("/api/chat/rooms/%s/read", roomID)
	return c.do(fasthttp.MethodPut, path, nil, nil)
}

// Eligibility connection eligibility for a room
func (c *RestClient) Eligibility(roomID string) (*conndomain.ConnectionEligibility, error) {
	var result conndomain.ConnectionEligibility
	path := fmt.Sprintf("/api/connections/eligibility/%s", roomID)
	if err := c.do(fasthttp.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendConnectionRequest create a pending connection for the room
func (c *RestClient) SendConnectionRequest(roomID string) (*conndomain.Connection, error) {
	var result conndomain.Connection
	req := conndomain.SendConnectionRequest{RoomID: roomID}
	if err := c.do(fasthttp.MethodPost, "/api/connections/", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AcceptConnection accept a pending request
func (c *RestClient) AcceptConnection(connectionID string) (*conndomain.Connection, error) {
	var result conndomain.Connection
	path := fmt.Sprintf("/api/connections/%s/accept", connectionID)
	if err := c.do(fasthttp.MethodPut, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectConnection reject a pending request
func (c *RestClient) RejectConnection(connectionID string) (*conndomain.Connection, error) {
	var result conndomain.Connection
	path := fmt.Sprintf("/api/connections/%s/reject", connectionID)
	if err := c.do(fasthttp.MethodPut, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListConnections the caller's accepted connections
func (c *RestClient) ListConnections() ([]conndomain.Connection, error) {
	var result []conndomain.Connection
	if err := c.do(fasthttp.MethodGet, "/api/connections/", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PendingReceived requests waiting on the caller's decision
func (c *RestClient) PendingReceived() ([]conndomain.Connection, error) {
	var result []conndomain.Connection
	if err := c.do(fasthttp.MethodGet, "/api/connections/pending/received", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PendingSent requests the caller sent and still awaits
func (c *RestClient) PendingSent() ([]conndomain.Connection, error) {
	var result []conndomain.Connection
	if err := c.do(fasthttp.MethodGet, "/api/connections/pending/sent", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
