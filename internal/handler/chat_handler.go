// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"fetw-assistant/internal/service"
	"fetw-assistant/pkg/response"
	"fetw-assistant/pkg/util"
)

// SuggestedQuestions 前端展示的起始问题
var SuggestedQuestions = []string{
	"Who is the HOD of ECE?",
	"Explain basic electronic components",
	"Where is FETW located?",
	"What is Digital Communication?",
}

// ChatHandler 对话请求处理器
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	useJSONFieldNames()
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest 发送消息请求
type ChatRequest struct {
	Message   string `json:"message" binding:"required,min=1,max=4000"` // 用户输入
	SessionID string `json:"sessionId" binding:"required,max=128"`      // 客户端生成的会话 ID
}

// ChatResponse 发送消息响应
type ChatResponse struct {
	Message string `json:"message"` // 助手回复
	Role    string `json:"role"`    // 固定为 assistant
}

// SendMessage 发送一条消息并返回助手回复
// @Summary 发送消息
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body ChatRequest true "消息"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message, field := describeBindError(err)
		response.BadRequest(c, message, field)
		return
	}

	reply, err := h.chatService.SendMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Message, verr.Field)
			return
		}

		log.Printf("[ERROR] 处理消息失败 session=%s rid=%s message=%q: %v",
			req.SessionID, c.GetString("request_id"), util.TruncateString(req.Message, 80), err)
		c.Error(err)
		response.InternalError(c)
		return
	}

	response.Success(c, ChatResponse{
		Message: reply.Content,
		Role:    reply.Role,
	})
}

// GetHistory 获取会话的全部消息
// @Summary 获取会话历史
// @Tags 对话
// @Produce json
// @Param sessionId path string true "会话ID"
// @Success 200 {array} model.Message
// @Router /api/chat/history/{sessionId} [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	messages, err := h.chatService.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("[ERROR] 获取会话历史失败 session=%s: %v", sessionID, err)
		c.Error(err)
		response.InternalError(c)
		return
	}

	response.Success(c, messages)
}

// GetSuggestions 返回起始问题列表
func (h *ChatHandler) GetSuggestions(c *gin.Context) {
	response.Success(c, SuggestedQuestions)
}
