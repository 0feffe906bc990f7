// Package response 提供统一的 HTTP 响应格式
// 成功时直接返回数据本身，失败时返回 {message, field}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应结构
// message: 提示信息
// field: 校验失败的字段（JSON 名称），只在 400 时出现
type ErrorResponse struct {
	Message string `json:"message"`         // 提示信息
	Field   string `json:"field,omitempty"` // 出错字段，可选
}

// 对外暴露的固定错误信息，具体原因只写日志
const (
	MessageInternalError   = "Internal Server Error"
	MessageTooManyRequests = "Too many requests, please slow down"
)

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，原样序列化
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// BadRequest 返回 400 错误（请求参数错误）
// 参数:
//   - c: Gin 上下文
//   - message: 错误信息
//   - field: 出错字段，没有具体字段时传空字符串
func BadRequest(c *gin.Context, message, field string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: message,
		Field:   field,
	})
}

// TooManyRequests 返回 429 错误（触发限流）
func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Message: MessageTooManyRequests})
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: MessageInternalError})
}

// ServiceUnavailable 返回 503 响应（健康检查失败）
func ServiceUnavailable(c *gin.Context, data interface{}) {
	c.JSON(http.StatusServiceUnavailable, data)
}
