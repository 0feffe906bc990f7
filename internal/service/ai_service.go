package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fetw-assistant/internal/config"
)

// QwenEndpoint DashScope 文本生成接口，ai.base_url 为空时使用
const QwenEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// AIService 通义千问 (DashScope) 文本生成客户端
type AIService struct {
	config config.AIConfig
	client *http.Client
}

// NewAIService 创建 AIService 实例
func NewAIService(cfg config.AIConfig) *AIService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = QwenEndpoint
	}
	return &AIService{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout, // 与 ai.timeout 一致
		},
	}
}

// DashScopeRequest 阿里云 API 请求结构
type DashScopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []DashScopeMessage `json:"messages"`
	} `json:"input"`
	Parameters DashScopeParameters `json:"parameters"`
}

// DashScopeParameters 生成参数
type DashScopeParameters struct {
	ResultFormat string  `json:"result_format"` // "message"
	Temperature  float32 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

type DashScopeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DashScopeResponse 阿里云 API 响应结构
type DashScopeResponse struct {
	Output struct {
		Choices []struct {
			Message DashScopeMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Complete 实现 Completer 接口
// 把整个上下文窗口按多轮对话发送给模型
func (s *AIService) Complete(ctx context.Context, turns []Turn) (string, error) {
	if s.config.APIKey == "" {
		return "", errors.New("AI service not configured (missing API Key)")
	}

	// 1. 构造请求 Body
	dashReq := DashScopeRequest{
		Model: s.config.Model,
		Parameters: DashScopeParameters{
			ResultFormat: "message",
			Temperature:  s.config.Temperature,
			MaxTokens:    s.config.MaxTokens,
		},
	}
	dashReq.Input.Messages = make([]DashScopeMessage, 0, len(turns))
	for _, t := range turns {
		dashReq.Input.Messages = append(dashReq.Input.Messages, DashScopeMessage{Role: t.Role, Content: t.Content})
	}

	jsonData, err := json.Marshal(dashReq)
	if err != nil {
		return "", err
	}

	// 2. 发送 HTTP 请求
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call AI service: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read AI response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// 3. 解析响应
	var dashResp DashScopeResponse
	if err := json.Unmarshal(bodyBytes, &dashResp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}

	if dashResp.Code != "" {
		return "", fmt.Errorf("AI service error: %s - %s", dashResp.Code, dashResp.Message)
	}

	// 没有候选时交给上层替换为固定回复
	if len(dashResp.Output.Choices) == 0 {
		return "", nil
	}
	return dashResp.Output.Choices[0].Message.Content, nil
}
