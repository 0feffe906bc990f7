// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// MessageRole 消息角色常量
const (
	MessageRoleUser      = "user"      // 用户消息
	MessageRoleAssistant = "assistant" // 助手回复
	MessageRoleSystem    = "system"    // 系统指令（只出现在发给模型的上下文中，不入库）
)

// Message 消息模型
// 对应数据库表 messages
// 创建后不再修改，也不会删除
type Message struct {
	// ID 消息唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// SessionID 客户端生成的会话标识
	// 会话没有单独的表，第一次写入消息时隐式存在
	SessionID string `gorm:"size:128;index;not null" json:"sessionId"`

	// Role 消息角色
	// user: 用户发送的消息
	// assistant: 助手的回复
	Role string `gorm:"size:20;not null" json:"role"`

	// Content 消息内容，不能为空
	Content string `gorm:"type:text;not null" json:"content"`

	// CreatedAt 消息创建时间
	// 同一会话内按写入顺序单调不减
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// IsValidRole 判断角色是否允许写入存储
func IsValidRole(role string) bool {
	return role == MessageRoleUser || role == MessageRoleAssistant
}
