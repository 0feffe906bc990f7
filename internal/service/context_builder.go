// Package service 提供业务逻辑层的实现
package service

import (
	"fmt"

	"fetw-assistant/internal/config"
	"fetw-assistant/internal/model"
)

// Turn 发送给回复生成器的一轮对话
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContextBuilder 把会话历史裁剪成有界的上下文窗口
type ContextBuilder struct {
	limit       int    // 保留的最近消息条数
	instruction string // 系统指令，总是窗口的第一条
}

// NewContextBuilder 创建 ContextBuilder 实例
// 参数:
//   - limit: 最近消息条数，小于 1 时按 1 处理
//   - college: 学院信息，写入系统指令
func NewContextBuilder(limit int, college config.CollegeConfig) *ContextBuilder {
	if limit < 1 {
		limit = 1
	}
	return &ContextBuilder{
		limit:       limit,
		instruction: systemInstruction(college),
	}
}

// systemInstruction 生成助手的系统指令
func systemInstruction(college config.CollegeConfig) string {
	return fmt.Sprintf(
		"You are the FETW Assistant, a helpful chatbot for %s. "+
			"The Head of the ECE Department is %s. The campus is located at %s. The official website is %s. "+
			"Answer questions about the college, the ECE department and basic electronics concepts. "+
			"Keep answers short and friendly.",
		college.Name, college.HOD, college.Location, college.Website,
	)
}

// Limit 返回窗口保留的消息条数
func (b *ContextBuilder) Limit() int {
	return b.limit
}

// Build 返回 [系统指令] + 最近 limit 条消息，保持原有顺序
// 不修改传入的历史，相同输入总是得到相同输出
func (b *ContextBuilder) Build(history []model.Message) []Turn {
	start := 0
	if len(history) > b.limit {
		start = len(history) - b.limit
	}

	window := make([]Turn, 0, len(history)-start+1)
	window = append(window, Turn{Role: model.MessageRoleSystem, Content: b.instruction})
	for _, m := range history[start:] {
		if !model.IsValidRole(m.Role) {
			continue
		}
		window = append(window, Turn{Role: m.Role, Content: m.Content})
	}
	return window
}
