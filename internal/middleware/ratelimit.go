package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"fetw-assistant/pkg/response"
)

// RateLimiter 固定窗口限流接口，由 cache.RedisCache 实现
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware 按客户端 IP 限流
// 参数:
//   - limiter: 限流器
//   - scope: 限流作用域，拼进计数 Key
//   - limit: 窗口内允许的请求数
//   - window: 窗口长度
//
// 限流器出错时放行请求，只记录警告
func RateLimitMiddleware(limiter RateLimiter, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Printf("[WARN] 限流检查失败 key=%s: %v", key, err)
			c.Next()
			return
		}
		if !allowed {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
