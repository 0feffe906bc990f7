package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fetw-assistant/internal/config"
	"fetw-assistant/internal/model"
	"fetw-assistant/internal/repository"
	"fetw-assistant/internal/service"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testServer struct {
	srv  *httptest.Server
	hub  *Hub
	chat *service.ChatService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	college := config.CollegeConfig{Name: "FETW", HOD: "Dr. Nagveeni K", Location: "Kalaburgi", Website: "https://example.edu"}
	chat := service.NewChatService(repository.NewMemoryMessageRepository(), service.NewContextBuilder(10, college), service.NewRuleResolver(college))

	hub := NewHub(chat, 5*time.Second)
	chat.SetNotifier(hub)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	NewHandler(hub, []string{"*"}).RegisterRoutes(r)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testServer{srv: srv, hub: hub, chat: chat}
}

func (s *testServer) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws/chat?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (s *testServer) waitConnections(t *testing.T, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.connectionCount(sessionID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections on %s, got %d", n, sessionID, s.hub.connectionCount(sessionID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestChatSendBroadcastsToSession(t *testing.T) {
	s := newTestServer(t)
	a := s.dial(t, "s1")
	b := s.dial(t, "s1")
	s.dial(t, "s2")
	s.waitConnections(t, "s1", 2)
	s.waitConnections(t, "s2", 1)

	if err := a.WriteJSON(NewMessage(TypeChatSend, ChatSendPayload{Message: "Who is the HOD?"})); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		if f.Type != TypeChatReply {
			t.Fatalf("expected chat:reply, got %s", f.Type)
		}
		var payload struct {
			SessionID string        `json:"sessionId"`
			Message   model.Message `json:"message"`
		}
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.SessionID != "s1" || !strings.Contains(payload.Message.Content, "Dr. Nagveeni K") {
			t.Fatalf("unexpected payload %+v", payload)
		}
	}

	history, _ := s.chat.GetHistory(context.Background(), "s1")
	if len(history) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(history))
	}
}

func TestChatSendValidationError(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "s1")
	s.waitConnections(t, "s1", 1)

	conn.WriteJSON(NewMessage(TypeChatSend, ChatSendPayload{Message: ""}))

	f := readFrame(t, conn)
	if f.Type != TypeError {
		t.Fatalf("expected error frame, got %s", f.Type)
	}
	var payload ErrorPayload
	json.Unmarshal(f.Payload, &payload)
	if payload.Code != http.StatusBadRequest || payload.Field != "message" {
		t.Fatalf("unexpected error payload %+v", payload)
	}

	history, _ := s.chat.GetHistory(context.Background(), "s1")
	if len(history) != 0 {
		t.Fatalf("invalid frame mutated the store: %d", len(history))
	}
}

func TestHeartbeatAndUnknownType(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "s1")
	s.waitConnections(t, "s1", 1)

	conn.WriteJSON(NewMessageWithID(TypeHeartbeat, nil, "hb-1"))
	if f := readFrame(t, conn); f.Type != TypePong {
		t.Fatalf("expected pong, got %s", f.Type)
	}

	conn.WriteJSON(NewMessage("terminal:input", nil))
	if f := readFrame(t, conn); f.Type != TypeError {
		t.Fatalf("expected error for unknown type, got %s", f.Type)
	}
}

func TestNotifyTurnFromHTTPPath(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "s1")
	s.waitConnections(t, "s1", 1)

	// 模拟 HTTP 接口完成一轮对话
	if _, err := s.chat.SendMessage(context.Background(), "s1", "hello"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if f := readFrame(t, conn); f.Type != TypeChatReply {
		t.Fatalf("expected chat:reply, got %s", f.Type)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, "s1")
	s.waitConnections(t, "s1", 1)

	conn.Close()
	s.waitConnections(t, "s1", 0)
}

func TestMissingSessionID(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.srv.URL + "/ws/chat")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
	if !check(req) {
		t.Fatal("requests without Origin should pass")
	}
	req.Header.Set("Origin", "http://localhost:5173")
	if !check(req) {
		t.Fatal("configured origin should pass")
	}
	req.Header.Set("Origin", "http://evil.example")
	if check(req) {
		t.Fatal("unknown origin should be rejected")
	}
}

func TestCheckOriginAllowAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
	req.Header.Set("Origin", "http://anywhere.example")

	if !checkOrigin(nil)(req) {
		t.Fatal("empty origin list should allow every origin")
	}
	if !checkOrigin([]string{"*"})(req) {
		t.Fatal("wildcard should allow every origin")
	}
}

// slowSender 模拟耗时较长的回复生成
type slowSender struct {
	hub   *Hub
	delay time.Duration
}

func (s *slowSender) SendMessage(ctx context.Context, sessionID, text string) (*model.Message, error) {
	time.Sleep(s.delay)
	reply := &model.Message{ID: 2, SessionID: sessionID, Role: model.MessageRoleAssistant, Content: "done"}
	s.hub.NotifyTurn(sessionID, reply)
	return reply, nil
}

func TestSlowTurnKeepsConnectionAlive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sender := &slowSender{delay: 700 * time.Millisecond}
	hub := NewHub(sender, 5*time.Second)
	hub.pongWait = 300 * time.Millisecond
	sender.hub = hub

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	r := gin.New()
	NewHandler(hub, nil).RegisterRoutes(r)
	s := &testServer{srv: httptest.NewServer(r), hub: hub}
	t.Cleanup(func() {
		cancel()
		s.srv.Close()
	})

	conn := s.dial(t, "slow")
	s.waitConnections(t, "slow", 1)

	if err := conn.WriteJSON(NewMessage(TypeChatSend, ChatSendPayload{Message: "Explain transistors"})); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != TypeChatReply {
		t.Fatalf("expected chat:reply, got %s", f.Type)
	}

	// 回复耗时超过读取超时后，连接仍然可用
	if err := conn.WriteJSON(NewMessageWithID(TypeHeartbeat, nil, "hb-1")); err != nil {
		t.Fatalf("write heartbeat: %v", err)
	}
	if f := readFrame(t, conn); f.Type != TypePong {
		t.Fatalf("expected pong after a slow turn, got %s", f.Type)
	}
}
