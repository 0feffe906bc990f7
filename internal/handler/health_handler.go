package handler

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"fetw-assistant/pkg/response"
)

// Pinger 可以做连通性检查的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthCheck struct {
	name   string
	pinger Pinger
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	store    string
	resolver string
	checks   []healthCheck
}

// NewHealthHandler 创建 HealthHandler 实例
// 参数:
//   - store: 当前使用的存储类型
//   - resolver: 当前使用的回复策略
func NewHealthHandler(store, resolver string) *HealthHandler {
	return &HealthHandler{
		store:    store,
		resolver: resolver,
	}
}

// AddCheck 注册一个依赖检查，如 database、redis
func (h *HealthHandler) AddCheck(name string, pinger Pinger) {
	h.checks = append(h.checks, healthCheck{name: name, pinger: pinger})
}

// Health 检查各依赖并返回服务状态
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	healthy := true
	for _, check := range h.checks {
		if err := check.pinger.Ping(ctx); err != nil {
			log.Printf("[WARN] 健康检查失败 %s: %v", check.name, err)
			checks[check.name] = "down"
			healthy = false
			continue
		}
		checks[check.name] = "up"
	}

	body := gin.H{
		"status":   "ok",
		"store":    h.store,
		"resolver": h.resolver,
		"checks":   checks,
	}
	if !healthy {
		body["status"] = "unavailable"
		response.ServiceUnavailable(c, body)
		return
	}
	response.Success(c, body)
}
