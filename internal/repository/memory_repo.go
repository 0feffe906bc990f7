package repository

import (
	"context"
	"sync"
	"time"

	"fetw-assistant/internal/model"
)

// MemoryMessageRepository 进程内存中的消息存储
// 进程重启后数据丢失，适合本地开发和单实例演示
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	nextID   int64
	lastTime time.Time
	messages map[string][]model.Message
	now      func() time.Time
}

// NewMemoryMessageRepository 创建 MemoryMessageRepository 实例
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		nextID:   1,
		messages: make(map[string][]model.Message),
		now:      time.Now,
	}
}

// Create 追加消息
// 写操作持有互斥锁，ID 自增且 CreatedAt 不会小于上一条消息
func (r *MemoryMessageRepository) Create(_ context.Context, message *model.Message) error {
	if err := validateMessage(message); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	if createdAt.Before(r.lastTime) {
		createdAt = r.lastTime
	}
	r.lastTime = createdAt

	message.ID = r.nextID
	message.CreatedAt = createdAt
	r.nextID++

	r.messages[message.SessionID] = append(r.messages[message.SessionID], *message)
	return nil
}

// GetBySessionID 返回会话消息的副本，按写入顺序排列
func (r *MemoryMessageRepository) GetBySessionID(_ context.Context, sessionID string) ([]model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[sessionID]
	copied := make([]model.Message, len(stored))
	copy(copied, stored)
	return copied, nil
}
