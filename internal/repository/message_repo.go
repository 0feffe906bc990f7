// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"log"

	"gorm.io/gorm"

	"fetw-assistant/internal/model"
)

// MessageRepository 基于 GORM 的持久化消息存储
// 负责消息相关的所有数据库操作
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建新消息
// 参数:
//   - ctx: 上下文
//   - message: 消息对象，ID 和 CreatedAt 由数据库填充
//
// 返回:
//   - error: 数据库错误，原样返回给调用方（不会伪造内存记录）
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := validateMessage(message); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(message).Error
}

// GetBySessionID 获取会话的所有消息
// 按创建时间正序排列，时间相同时按 ID 排序
// 查询失败时记录日志并返回空列表，本轮对话按"没有历史"继续
// 参数:
//   - ctx: 上下文
//   - sessionID: 会话ID
//
// 返回:
//   - []model.Message: 消息列表
//   - error: 始终为 nil
func (r *MessageRepository) GetBySessionID(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("[WARN] failed to load history for session=%s, continuing without it: %v", sessionID, err)
		return []model.Message{}, nil
	}
	return messages, nil
}

// Ping 检查数据库连接，用于健康检查
func (r *MessageRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
