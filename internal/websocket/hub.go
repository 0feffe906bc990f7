package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"fetw-assistant/internal/model"
)

// ChatSender 处理一轮对话，由 service.ChatService 实现
type ChatSender interface {
	SendMessage(ctx context.Context, sessionID, text string) (*model.Message, error)
}

// Hub 是 WebSocket 连接的中心管理器
// 负责：
// 1. 按会话管理客户端连接
// 2. 把新的助手回复广播给会话内的连接
type Hub struct {
	// 会话到连接集合的映射：sessionID -> clients
	// 同一会话可以在多个浏览器标签页中打开
	sessions map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}

	// 互斥锁，保护 sessions
	mu sync.RWMutex

	chat           ChatSender
	requestTimeout time.Duration
	pongWait       time.Duration // 读取超时，收到 Pong 或处理完一条消息后重置
}

// NewHub 创建 Hub 实例
// 参数:
//   - chat: 对话服务
//   - requestTimeout: 单条消息的处理时限，0 表示不限
func NewHub(chat ChatSender, requestTimeout time.Duration) *Hub {
	return &Hub{
		sessions:       make(map[string]map[*Client]struct{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		stopped:        make(chan struct{}),
		chat:           chat,
		requestTimeout: requestTimeout,
		pongWait:       defaultPongWait,
	}
}

// Run 启动 Hub 的主循环，ctx 取消后关闭所有连接
// 应该在单独的 goroutine 中运行
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[client.sessionID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.sessions[client.sessionID] = clients
	}
	clients[client] = struct{}{}
	log.Printf("[INFO] WebSocket client registered: session=%s connections=%d", client.sessionID, len(clients))
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.sessions[client.sessionID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
	client.Close()
	log.Printf("[INFO] WebSocket client unregistered: session=%s", client.sessionID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, clients := range h.sessions {
		for client := range clients {
			client.Close()
		}
		delete(h.sessions, sessionID)
	}
}

// Register 注册客户端（供外部调用）
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
		client.Close()
	}
}

// Unregister 注销客户端（供外部调用）
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
		client.Close()
	}
}

// NotifyTurn 实现 service.TurnNotifier
// 把助手回复推送给订阅了该会话的所有连接
func (h *Hub) NotifyTurn(sessionID string, reply *model.Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[sessionID]))
	for client := range h.sessions[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	msg := NewMessage(TypeChatReply, &ChatReplyPayload{
		SessionID: sessionID,
		Message:   reply,
	})
	for _, client := range clients {
		client.SendMessage(msg)
	}
}

// connectionCount 返回会话当前的连接数
func (h *Hub) connectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}
