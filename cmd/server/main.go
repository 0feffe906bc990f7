// Package main 是服务端的入口点
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"fetw-assistant/internal/cache"
	"fetw-assistant/internal/config"
	"fetw-assistant/internal/database"
	"fetw-assistant/internal/handler"
	"fetw-assistant/internal/middleware"
	"fetw-assistant/internal/repository"
	"fetw-assistant/internal/service"
	"fetw-assistant/internal/websocket"
)

// migrateRetryInterval 启动迁移失败后的重试间隔
const migrateRetryInterval = 30 * time.Second

func main() {
	// .env 不存在时只使用系统环境变量
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file loaded: %v", err)
	}

	// 加载配置
	cfg, err := config.Load("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	health := handler.NewHealthHandler(cfg.Store.Type, cfg.Chat.Resolver)

	migrateCtx, stopMigrate := context.WithCancel(context.Background())
	defer stopMigrate()

	// 初始化消息存储，启动时选定一次
	var (
		store repository.MessageStore
		db    *gorm.DB
	)
	switch cfg.Store.Type {
	case config.StoreDatabase:
		db, err = database.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to init database: %v", err)
		}
		// 数据库暂时不可达时继续提供服务，后台重试迁移
		if err := database.AutoMigrate(db); err != nil {
			log.Printf("[ERROR] Failed to migrate database, retrying in background: %v", err)
			go database.MigrateWithRetry(migrateCtx, db, migrateRetryInterval)
		}
		messageRepo := repository.NewMessageRepository(db)
		health.AddCheck("database", messageRepo)
		store = messageRepo
	default:
		log.Println("[WARN] Using in-memory message store, history is lost on restart")
		store = repository.NewMemoryMessageRepository()
	}

	// 初始化 Redis（可选，用于限流）
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to init redis: %v", err)
		}
		health.AddCheck("redis", redisCache)
	}

	// 初始化 Service 层
	resolver, err := buildResolver(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to init resolver: %v", err)
	}
	builder := service.NewContextBuilder(cfg.Chat.HistoryLimit, cfg.College)
	chatService := service.NewChatService(store, builder, resolver)

	// 初始化 WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(chatService, cfg.Server.RequestTimeout)
	chatService.SetNotifier(wsHub)
	go wsHub.Run(hubCtx) // 在单独的 goroutine 中运行

	// 初始化 Handler 层
	chatHandler := handler.NewChatHandler(chatService)
	wsHandler := websocket.NewHandler(wsHub, cfg.Server.CORS)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoveryMiddleware())            // 恢复 panic
	router.Use(middleware.RequestIDMiddleware())           // 请求 ID
	router.Use(middleware.LoggerMiddleware())              // 请求日志
	router.Use(middleware.CORSMiddleware(cfg.Server.CORS)) // CORS

	// 注册路由
	var limiter middleware.RateLimiter
	if redisCache != nil && cfg.Chat.RateLimit > 0 {
		limiter = redisCache
	}
	registerRoutes(router, cfg, limiter, chatHandler, health, wsHandler)

	// 创建 HTTP 服务器
	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// 留出模型调用的时间
		WriteTimeout: cfg.Server.RequestTimeout + 10*time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (store=%s, resolver=%s, window=%d)",
			server.Addr, cfg.Store.Type, cfg.Chat.Resolver, builder.Limit())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server forced to shutdown: %v", err)
	}
	stopHub()
	stopMigrate()

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}

	log.Println("Server exited")
}

// buildResolver 根据 chat.resolver 和 ai.provider 选择回复策略
func buildResolver(ctx context.Context, cfg *config.Config) (service.Resolver, error) {
	if cfg.Chat.Resolver == config.ResolverRules {
		return service.NewRuleResolver(cfg.College), nil
	}

	if cfg.AI.APIKey == "" {
		log.Println("[WARN] ai.api_key is empty, every completion request will fail")
	}

	var completer service.Completer
	switch cfg.AI.Provider {
	case config.ProviderArk:
		arkCompleter, err := service.NewArkCompleter(ctx, cfg.AI)
		if err != nil {
			return nil, err
		}
		completer = arkCompleter
	case config.ProviderDashScope:
		completer = service.NewAIService(cfg.AI)
	default:
		return nil, fmt.Errorf("unknown ai.provider %q", cfg.AI.Provider)
	}
	return service.NewCompletionResolver(completer, cfg.AI.Timeout), nil
}

// registerRoutes 注册所有路由
func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	limiter middleware.RateLimiter,
	chatHandler *handler.ChatHandler,
	healthHandler *handler.HealthHandler,
	wsHandler *websocket.Handler,
) {
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	api.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))
	{
		chat := api.Group("/chat")
		if limiter != nil {
			chat.POST("", middleware.RateLimitMiddleware(limiter, "chat", cfg.Chat.RateLimit, cfg.Chat.RateWindow), chatHandler.SendMessage)
		} else {
			chat.POST("", chatHandler.SendMessage)
		}
		chat.GET("/history/:sessionId", chatHandler.GetHistory)
		chat.GET("/suggestions", chatHandler.GetSuggestions)
	}

	wsHandler.RegisterRoutes(router)
}
