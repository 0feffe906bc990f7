package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware 创建 CORS 跨域中间件
// 参数:
//   - origins: 允许的来源，包含 "*" 时允许所有来源（此时不允许携带凭据）
//
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func CORSMiddleware(origins []string) gin.HandlerFunc {
	headers := cors.DefaultConfig()
	headers.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	headers.ExposeHeaders = []string{"Content-Length", RequestIDHeader}
	headers.MaxAge = 24 * time.Hour

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
			break
		}
	}

	if allowAll {
		headers.AllowAllOrigins = true
	} else {
		headers.AllowOrigins = origins
		headers.AllowCredentials = true
	}
	return cors.New(headers)
}
