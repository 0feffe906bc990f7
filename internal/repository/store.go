// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"
	"fmt"

	"fetw-assistant/internal/model"
)

// ErrInvalidMessage 消息缺少会话、角色或内容
var ErrInvalidMessage = errors.New("invalid message")

// MessageStore 消息存储接口
// 内存实现和数据库实现都满足这个接口，启动时二选一
type MessageStore interface {
	// Create 追加一条消息，成功后 message 的 ID 和 CreatedAt 会被填充
	Create(ctx context.Context, message *model.Message) error

	// GetBySessionID 按创建顺序返回会话的全部消息
	GetBySessionID(ctx context.Context, sessionID string) ([]model.Message, error)
}

// validateMessage 写入前的基本校验，两种实现共用
func validateMessage(message *model.Message) error {
	if message == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidMessage)
	}
	if message.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidMessage)
	}
	if !model.IsValidRole(message.Role) {
		return fmt.Errorf("%w: role %q", ErrInvalidMessage, message.Role)
	}
	if message.Content == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidMessage)
	}
	return nil
}
