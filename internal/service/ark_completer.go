package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"fetw-assistant/internal/config"
	msgmodel "fetw-assistant/internal/model"
)

// ArkCompleter 基于 eino 的火山方舟 (Ark) 补全客户端
type ArkCompleter struct {
	chatModel model.BaseChatModel
}

// NewArkCompleter 使用 ai.* 配置创建方舟模型
func NewArkCompleter(ctx context.Context, cfg config.AIConfig) (*ArkCompleter, error) {
	arkCfg := &ark.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Region: cfg.Region,
	}
	if cfg.BaseURL != "" {
		arkCfg.BaseURL = cfg.BaseURL
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		arkCfg.MaxTokens = &maxTokens
	}
	if cfg.Temperature > 0 {
		temperature := cfg.Temperature
		arkCfg.Temperature = &temperature
	}

	chatModel, err := ark.NewChatModel(ctx, arkCfg)
	if err != nil {
		return nil, fmt.Errorf("create ark chat model: %w", err)
	}
	return NewArkCompleterWithModel(chatModel), nil
}

// NewArkCompleterWithModel 包装任意 eino 对话模型
func NewArkCompleterWithModel(chatModel model.BaseChatModel) *ArkCompleter {
	return &ArkCompleter{chatModel: chatModel}
}

// Complete 实现 Completer 接口
func (c *ArkCompleter) Complete(ctx context.Context, turns []Turn) (string, error) {
	resp, err := c.chatModel.Generate(ctx, toSchemaMessages(turns))
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}

func toSchemaMessages(turns []Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case msgmodel.MessageRoleSystem:
			messages = append(messages, schema.SystemMessage(t.Content))
		case msgmodel.MessageRoleAssistant:
			messages = append(messages, schema.AssistantMessage(t.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(t.Content))
		}
	}
	return messages
}
