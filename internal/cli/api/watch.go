package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"fetw-assistant/internal/model"
)

// 服务器推送的消息类型
const (
	TypeChatReply = "chat:reply"
	TypeError     = "error"
)

// Frame WebSocket 消息结构
type Frame struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// ReplyPayload chat:reply 的内容
type ReplyPayload struct {
	SessionID string        `json:"sessionId"`
	Message   model.Message `json:"message"`
}

// wsURL 将 HTTP 地址转换为 WebSocket 地址
func (c *Client) wsURL(sessionID string) string {
	u := strings.Replace(c.baseURL, "http://", "ws://", 1)
	u = strings.Replace(u, "https://", "wss://", 1)
	return fmt.Sprintf("%s/ws/chat?sessionId=%s", u, url.QueryEscape(sessionID))
}

// Watch 订阅会话的新回复，直到 ctx 取消或连接断开
// 参数:
//   - ctx: 上下文，取消后关闭连接
//   - sessionID: 会话ID
//   - onReply: 收到助手回复时的回调
func (c *Client) Watch(ctx context.Context, sessionID string, onReply func(model.Message)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(sessionID), nil)
	if err != nil {
		return fmt.Errorf("连接失败: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("连接已断开: %w", err)
		}

		if frame.Type != TypeChatReply {
			continue
		}
		var payload ReplyPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			continue
		}
		onReply(payload.Message)
	}
}
