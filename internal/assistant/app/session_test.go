package app

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"craft_marketplace_service/internal/assistant/domain"
	"craft_marketplace_service/pkg/localstore"
	"craft_marketplace_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

// serveInMemory run a fasthttp handler over an in-memory listener and
// point the session's client at it
func serveInMemory(t *testing.T, s *Session, handler fasthttp.RequestHandler) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go server.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	s.client = &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}
}

func newTestSession(t *testing.T) (*Session, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "assistant.json"))
	require.NoError(t, err)
	return NewSession("http://assistant", store, time.Second), store
}

func chatHandler(reply domain.ChatResponse) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/api/chat" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		b, _ := json.Marshal(reply)
		ctx.SetContentType("application/json")
		ctx.SetBody(b)
	}
}

func TestSession_SendMessageLazySession(t *testing.T) {
	s, store := newTestSession(t)
	serveInMemory(t, s, chatHandler(domain.ChatResponse{
		Response:  "Xin chao! How can I help?",
		SessionID: "sess-1",
		Intent:    "greeting",
		SuggestedQuestions: []domain.SuggestedQuestion{
			{Text: "Show me pottery villages", Category: "explore"},
		},
	}))

	assert.Empty(t, s.SessionID())

	reply, err := s.SendMessage("hello")
	assert.NoError(t, err)
	assert.Equal(t, "sess-1", s.SessionID())
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.NotNil(t, reply.Metadata)
	assert.Equal(t, "greeting", reply.Metadata.Intent)

	msgs := s.Messages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)

	// both id and transcript are persisted
	var storedID string
	require.NoError(t, store.Get(SessionIDKey, &storedID))
	assert.Equal(t, "sess-1", storedID)
}

func TestSession_SendMessageFailure(t *testing.T) {
	s, _ := newTestSession(t)
	serveInMemory(t, s, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})

	reply, err := s.SendMessage("hello")
	assert.Error(t, err)
	assert.True(t, reply.IsError)
	assert.True(t, s.LastError())

	// the failed exchange still shows both sides in the transcript
	msgs := s.Messages()
	assert.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsError)
}

func TestSession_ErrorFlagClearsOnSuccess(t *testing.T) {
	s, _ := newTestSession(t)

	var fail bool
	var mu sync.Mutex
	serveInMemory(t, s, func(ctx *fasthttp.RequestCtx) {
		mu.Lock()
		f := fail
		mu.Unlock()
		if f {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}
		b, _ := json.Marshal(domain.ChatResponse{Response: "ok", SessionID: "sess-1"})
		ctx.SetBody(b)
	})

	mu.Lock()
	fail = true
	mu.Unlock()
	s.SendMessage("first")
	assert.True(t, s.LastError())

	mu.Lock()
	fail = false
	mu.Unlock()
	_, err := s.SendMessage("second")
	assert.NoError(t, err)
	assert.False(t, s.LastError())
}

func TestSession_HandleActionRequiresSession(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.HandleAction("view_details", []int64{1}, nil)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_HandleAction(t *testing.T) {
	s, _ := newTestSession(t)

	var gotAction domain.ActionRequest
	var mu sync.Mutex
	serveInMemory(t, s, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/api/chat":
			b, _ := json.Marshal(domain.ChatResponse{Response: "ok", SessionID: "sess-1"})
			ctx.SetBody(b)
		case "/api/chat/action":
			mu.Lock()
			_ = json.Unmarshal(ctx.PostBody(), &gotAction)
			mu.Unlock()
			b, _ := json.Marshal(domain.ActionResponse{
				Success:    true,
				ActionType: "view_details",
				Navigation: domain.NavigationResult{
					NavigateTo: "village_detail",
					Params:     map[string]interface{}{"village_id": float64(7)},
					OpenIn:     "new_page",
				},
			})
			ctx.SetBody(b)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	_, err := s.SendMessage("hello")
	require.NoError(t, err)

	resp, err := s.HandleAction("view_details", []int64{7}, map[string]interface{}{"source": "recommendation"})
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "view_details", resp.ActionType)
	assert.Equal(t, "village_detail", resp.Navigation.NavigateTo)
	assert.Equal(t, "new_page", resp.Navigation.OpenIn)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "view_details", gotAction.ActionType)
	assert.Equal(t, []int64{7}, gotAction.VillageIDs)
	assert.Equal(t, "sess-1", gotAction.SessionID)
	assert.Equal(t, "recommendation", gotAction.Context["source"])
}

func TestSession_EndpointPaths(t *testing.T) {
	s, _ := newTestSession(t)

	var calls []string
	var mu sync.Mutex
	serveInMemory(t, s, func(ctx *fasthttp.RequestCtx) {
		mu.Lock()
		calls = append(calls, string(ctx.Method())+" "+string(ctx.RequestURI()))
		mu.Unlock()

		switch string(ctx.Path()) {
		case "/api/chat":
			b, _ := json.Marshal(domain.ChatResponse{Response: "ok", SessionID: "sess-9"})
			ctx.SetBody(b)
		case "/api/chat/action":
			b, _ := json.Marshal(domain.ActionResponse{Success: true, ActionType: "continue_chat"})
			ctx.SetBody(b)
		case "/api/chat/history/sess-9":
			if string(ctx.Method()) == fasthttp.MethodGet {
				b, _ := json.Marshal(domain.HistoryResponse{SessionID: "sess-9"})
				ctx.SetBody(b)
			}
		case "/health":
			ctx.SetBodyString(`{"status":"ok","service":"assistant"}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	_, err := s.SendMessage("hello")
	require.NoError(t, err)
	_, err = s.HandleAction("continue_chat", nil, nil)
	require.NoError(t, err)
	_, err = s.LoadHistory(0)
	require.NoError(t, err)
	assert.True(t, s.Health())
	s.ClearChat()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"POST /api/chat",
		"POST /api/chat/action",
		"GET /api/chat/history/sess-9?limit=20",
		"GET /health",
		"DELETE /api/chat/history/sess-9",
	}, calls)
}

func TestSession_ClearChatWipesEvenWhenServerFails(t *testing.T) {
	s, store := newTestSession(t)
	serveInMemory(t, s, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/api/chat":
			b, _ := json.Marshal(domain.ChatResponse{Response: "ok", SessionID: "sess-1"})
			ctx.SetBody(b)
		default:
			// the session delete endpoint is down
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		}
	})

	_, err := s.SendMessage("hello")
	require.NoError(t, err)

	s.ClearChat()

	assert.Empty(t, s.SessionID())
	assert.Empty(t, s.Messages())
	var id string
	assert.ErrorIs(t, store.Get(SessionIDKey, &id), localstore.ErrNotFound)
}

func TestSession_PersistenceAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.json")
	store, err := localstore.Open(path)
	require.NoError(t, err)

	s := NewSession("http://assistant", store, time.Second)
	serveInMemory(t, s, chatHandler(domain.ChatResponse{Response: "hi", SessionID: "sess-1"}))
	_, err = s.SendMessage("hello")
	require.NoError(t, err)

	// a new session over the same file resumes id and transcript
	reloadedStore, err := localstore.Open(path)
	require.NoError(t, err)
	s2 := NewSession("http://assistant", reloadedStore, time.Second)

	assert.Equal(t, "sess-1", s2.SessionID())
	assert.Len(t, s2.Messages(), 2)
}
