package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fetw-assistant/internal/service"
	"fetw-assistant/pkg/response"
)

// Client 表示一个 WebSocket 客户端连接
type Client struct {
	hub       *Hub            // 所属的 Hub
	conn      *websocket.Conn // WebSocket 连接
	send      chan []byte     // 发送消息的通道
	done      chan struct{}   // 关闭信号
	closeOnce sync.Once
	sessionID string // 订阅的会话ID
}

// 连接配置常量
const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 等待 Pong 响应的默认超时时间，Ping 间隔取其 9/10
	defaultPongWait = 60 * time.Second

	// 消息最大大小（64KB）
	maxMessageSize = 64 * 1024
)

// NewClient 创建新的客户端
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		sessionID: sessionID,
	}
}

// ReadPump 读取 WebSocket 消息的 goroutine
// 每个客户端连接启动一个 ReadPump
// 同一连接上的消息按顺序处理
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	pongWait := c.hub.pongWait
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	// 每次收到 Pong，重置读取超时
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] WebSocket read error session=%s: %v", c.sessionID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.sendError(http.StatusBadRequest, "Invalid message", "body")
			continue
		}

		c.handleMessage(&msg)
		// 生成回复期间不会处理 Pong，处理完后重置读取超时
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// WritePump 写入 WebSocket 消息的 goroutine
// 每个客户端连接启动一个 WritePump
// 负责从 send 通道读取消息并写入 WebSocket
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 向客户端发送消息
// 非阻塞，缓冲区满或连接已关闭时丢弃
func (c *Client) SendMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[WARN] Client send buffer full, dropping message session=%s", c.sessionID)
	}
	return nil
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case TypeHeartbeat:
		c.SendMessage(NewMessageWithID(TypePong, nil, msg.MessageID))

	case TypeChatSend:
		c.handleChatSend(msg)

	default:
		c.sendError(http.StatusBadRequest, "Unknown message type: "+msg.Type, "type")
	}
}

// handleChatSend 走和 HTTP 接口相同的对话流程
// 回复通过 Hub 广播给会话内的所有连接，包括发送者
func (c *Client) handleChatSend(msg *Message) {
	payloadBytes, _ := json.Marshal(msg.Payload)
	var payload ChatSendPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.sendError(http.StatusBadRequest, "message must be a string", "message")
		return
	}

	ctx := context.Background()
	if c.hub.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.hub.requestTimeout)
		defer cancel()
	}

	if _, err := c.hub.chat.SendMessage(ctx, c.sessionID, payload.Message); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.sendError(http.StatusBadRequest, verr.Message, verr.Field)
			return
		}
		log.Printf("[ERROR] WebSocket 处理消息失败 session=%s: %v", c.sessionID, err)
		c.sendError(http.StatusInternalServerError, response.MessageInternalError, "")
	}
}

func (c *Client) sendError(code int, message, field string) {
	c.SendMessage(NewMessage(TypeError, &ErrorPayload{
		Code:    code,
		Message: message,
		Field:   field,
	}))
}

// Close 关闭客户端连接，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
