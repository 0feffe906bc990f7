// Package middleware 提供 HTTP 请求的中间件
package middleware

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fetw-assistant/pkg/response"
	"fetw-assistant/pkg/util"
)

// RequestIDHeader 请求 ID 响应头
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware 为每个请求分配 ID
// 客户端已经带了 X-Request-ID 时沿用客户端的值
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = util.GenerateUUID()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware 创建请求日志中间件
// 记录每个请求的方法、路径、状态码和耗时
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()
		logLine := formatLogLine(statusCode, time.Since(start), c.ClientIP(), c.Request.Method, path, c.GetString("request_id"), errorMessage)

		// 5xx 记为错误，4xx 记为警告
		switch {
		case statusCode >= 500:
			log.Printf("[ERROR] %s", logLine)
		case statusCode >= 400:
			log.Printf("[WARN] %s", logLine)
		default:
			log.Printf("[INFO] %s", logLine)
		}
	}
}

// formatLogLine 格式化日志行
func formatLogLine(statusCode int, latency time.Duration, clientIP, method, path, requestID, errorMessage string) string {
	// 小于 1ms 显示微秒，小于 1s 显示毫秒
	var latencyStr string
	if latency < time.Millisecond {
		latencyStr = latency.String()
	} else if latency < time.Second {
		latencyStr = latency.Truncate(time.Microsecond).String()
	} else {
		latencyStr = latency.Truncate(time.Millisecond).String()
	}

	logLine := fmt.Sprintf("%s | %-12s | %-15s | %-7s | %s", statusLabel(statusCode), latencyStr, clientIP, method, path)
	if requestID != "" {
		logLine += " | rid=" + requestID
	}
	if errorMessage != "" {
		logLine += " | " + strings.TrimSpace(errorMessage)
	}
	return logLine
}

// statusLabel 根据状态码返回带分类的状态码
func statusLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return fmt.Sprintf("[%d OK]", code)
	case code >= 300 && code < 400:
		return fmt.Sprintf("[%d REDIRECT]", code)
	case code >= 400 && code < 500:
		return fmt.Sprintf("[%d CLIENT_ERR]", code)
	default:
		return fmt.Sprintf("[%d SERVER_ERR]", code)
	}
}

// RecoveryMiddleware 创建 panic 恢复中间件
// 捕获处理器中的 panic，防止程序崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %s %s rid=%s: %v", c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), err)
				c.AbortWithStatusJSON(500, response.ErrorResponse{Message: response.MessageInternalError})
			}
		}()

		c.Next()
	}
}
