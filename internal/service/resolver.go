package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fetw-assistant/internal/model"
)

// ApologyReply 模型没有给出内容时的固定回复
const ApologyReply = "I'm sorry, I couldn't generate a response right now."

// Resolver 根据用户消息和上下文窗口生成助手回复
type Resolver interface {
	Resolve(ctx context.Context, text string, window []Turn) (string, error)
}

// Completer 大模型补全接口
// 返回第一个候选的文本，没有候选时返回空字符串
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// CompletionResolver 把上下文交给大模型生成回复
type CompletionResolver struct {
	completer Completer
	timeout   time.Duration
}

// NewCompletionResolver 创建 CompletionResolver 实例
// 参数:
//   - completer: 大模型客户端
//   - timeout: 单次调用超时，0 表示只受请求上下文约束
func NewCompletionResolver(completer Completer, timeout time.Duration) *CompletionResolver {
	return &CompletionResolver{
		completer: completer,
		timeout:   timeout,
	}
}

// Resolve 调用模型，失败时返回包装了 ErrUpstream 的错误
func (r *CompletionResolver) Resolve(ctx context.Context, text string, window []Turn) (string, error) {
	turns := window
	if n := len(window); n == 0 || window[n-1].Role != model.MessageRoleUser || window[n-1].Content != text {
		turns = make([]Turn, 0, n+1)
		turns = append(turns, window...)
		turns = append(turns, Turn{Role: model.MessageRoleUser, Content: text})
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	reply, err := r.completer.Complete(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ApologyReply, nil
	}
	return reply, nil
}
