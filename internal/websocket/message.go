// Package websocket 提供 WebSocket 通信功能
// 同一会话的所有连接都会收到该会话的新回复
package websocket

import (
	"time"

	"fetw-assistant/internal/model"
)

// MessageType 消息类型常量
const (
	// 客户端 → 服务端
	TypeChatSend  = "chat:send" // 发送一条用户消息
	TypeHeartbeat = "heartbeat" // 心跳

	// 服务端 → 客户端
	TypeChatReply = "chat:reply" // 会话产生了新的助手回复

	// 通用
	TypeError = "error" // 错误消息
	TypePong  = "pong"  // 心跳响应
)

// Message WebSocket 消息结构
// 所有消息都使用这个统一的结构
type Message struct {
	Type      string      `json:"type"`                 // 消息类型
	Payload   interface{} `json:"payload"`              // 消息内容
	Timestamp int64       `json:"timestamp"`            // 时间戳（毫秒）
	MessageID string      `json:"message_id,omitempty"` // 消息ID，用于追踪
}

// NewMessage 创建新消息
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewMessageWithID 创建带消息ID的新消息
func NewMessageWithID(msgType string, payload interface{}, messageID string) *Message {
	msg := NewMessage(msgType, payload)
	msg.MessageID = messageID
	return msg
}

// ==================== Payload 类型定义 ====================

// ChatSendPayload 客户端发送消息时使用
type ChatSendPayload struct {
	Message string `json:"message"` // 用户输入
}

// ChatReplyPayload 广播助手回复时使用
type ChatReplyPayload struct {
	SessionID string         `json:"sessionId"` // 会话ID
	Message   *model.Message `json:"message"`   // 已保存的助手消息
}

// ErrorPayload 错误消息 Payload
type ErrorPayload struct {
	Code    int    `json:"code"`            // 错误码，沿用 HTTP 状态码
	Message string `json:"message"`         // 错误信息
	Field   string `json:"field,omitempty"` // 校验失败的字段
}
