// Package api 封装与 FETW Assistant 服务器的 HTTP API 交互
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fetw-assistant/internal/model"
)

// Client API 客户端
// baseURL: 例如 http://localhost:8080
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 API 客户端
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError 服务器返回的错误
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Field, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// ChatReply 发送消息的响应
type ChatReply struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// SendMessage 发送一条消息并返回助手回复
func (c *Client) SendMessage(ctx context.Context, sessionID, text string) (*ChatReply, error) {
	body := map[string]string{
		"message":   text,
		"sessionId": sessionID,
	}
	var reply ChatReply
	if err := c.post(ctx, "/api/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// History 获取会话的全部消息
func (c *Client) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	if err := c.get(ctx, "/api/chat/history/"+url.PathEscape(sessionID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Suggestions 获取起始问题
func (c *Client) Suggestions(ctx context.Context) ([]string, error) {
	var suggestions []string
	if err := c.get(ctx, "/api/chat/suggestions", &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// --- 通用请求封装 ---

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求服务器失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}
