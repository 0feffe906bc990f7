package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"fetw-assistant/internal/model"
	"fetw-assistant/internal/repository"
)

// 对话服务相关错误
var (
	ErrStoreWrite = errors.New("message store write failed")
	ErrUpstream   = errors.New("completion service failed")
)

// ValidationError 输入校验失败，Field 为出错字段的 JSON 名称
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// 输入长度上限，与 HTTP 绑定规则和 messages.session_id 列宽一致
const (
	MaxMessageLength   = 4000
	MaxSessionIDLength = 128
)

// ValidateTurn 校验一次对话输入
func ValidateTurn(sessionID, text string) error {
	switch {
	case text == "":
		return &ValidationError{Field: "message", Message: "message must contain at least 1 character(s)"}
	case utf8.RuneCountInString(text) > MaxMessageLength:
		return &ValidationError{Field: "message", Message: fmt.Sprintf("message must contain at most %d characters", MaxMessageLength)}
	case sessionID == "":
		return &ValidationError{Field: "sessionId", Message: "sessionId is required"}
	case utf8.RuneCountInString(sessionID) > MaxSessionIDLength:
		return &ValidationError{Field: "sessionId", Message: fmt.Sprintf("sessionId must contain at most %d characters", MaxSessionIDLength)}
	}
	return nil
}

// TurnNotifier 对话完成通知接口
type TurnNotifier interface {
	NotifyTurn(sessionID string, reply *model.Message)
}

// ChatService 对话服务
// 负责一轮对话的固定流程：保存用户消息、组装上下文、生成回复、保存回复
type ChatService struct {
	store    repository.MessageStore // 消息存储
	builder  *ContextBuilder         // 上下文窗口
	resolver Resolver                // 回复生成策略
	notifier TurnNotifier            // 对话通知器
}

// NewChatService 创建 ChatService 实例
func NewChatService(store repository.MessageStore, builder *ContextBuilder, resolver Resolver) *ChatService {
	return &ChatService{
		store:    store,
		builder:  builder,
		resolver: resolver,
	}
}

// SetNotifier 设置通知器
func (s *ChatService) SetNotifier(n TurnNotifier) {
	s.notifier = n
}

// SendMessage 处理一条用户消息并返回助手回复
// 参数:
//   - ctx: 请求上下文
//   - sessionID: 会话标识，由客户端生成
//   - text: 用户输入
//
// 返回:
//   - *model.Message: 已保存的助手消息
//   - error: *ValidationError / ErrStoreWrite / ErrUpstream
//
// 用户消息保存成功后出现的任何错误都不会回滚它
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*model.Message, error) {
	if err := ValidateTurn(sessionID, text); err != nil {
		return nil, err
	}

	// 1. 保存用户消息
	userMsg := &model.Message{
		SessionID: sessionID,
		Role:      model.MessageRoleUser,
		Content:   text,
	}
	if err := s.store.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("%w: save user message: %w", ErrStoreWrite, err)
	}

	// 2. 读取历史并组装窗口，读取失败按空历史处理
	history, err := s.store.GetBySessionID(ctx, sessionID)
	if err != nil {
		log.Printf("[WARN] 读取会话历史失败 session=%s: %v", sessionID, err)
		history = nil
	}
	window := s.builder.Build(history)

	// 3. 生成回复
	replyText, err := s.resolver.Resolve(ctx, text, window)
	if err != nil {
		return nil, fmt.Errorf("resolve reply: %w", err)
	}

	// 4. 保存助手消息
	reply := &model.Message{
		SessionID: sessionID,
		Role:      model.MessageRoleAssistant,
		Content:   replyText,
	}
	if err := s.store.Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("%w: save assistant message: %w", ErrStoreWrite, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyTurn(sessionID, reply)
	}
	return reply, nil
}

// GetHistory 返回会话的全部消息，未知会话返回空列表
func (s *ChatService) GetHistory(ctx context.Context, sessionID string) ([]model.Message, error) {
	messages, err := s.store.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return messages, nil
}
