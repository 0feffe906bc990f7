// Package config 负责加载和管理应用程序的配置
// 使用 viper 库支持 YAML 配置文件和环境变量覆盖
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 存储实现类型
const (
	StoreMemory   = "memory"   // 进程内存，重启后丢失
	StoreDatabase = "database" // 关系型数据库，持久化
)

// 回复生成策略
const (
	ResolverRules      = "rules"      // 关键词规则
	ResolverCompletion = "completion" // 大模型补全
)

// 大模型服务提供方
const (
	ProviderDashScope = "dashscope"
	ProviderArk       = "ark"
)

// Config 是应用程序的根配置结构
// 包含所有子配置模块
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Store    StoreConfig    `mapstructure:"store"`    // 消息存储配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Redis    RedisConfig    `mapstructure:"redis"`    // Redis 配置
	Chat     ChatConfig     `mapstructure:"chat"`     // 对话配置
	AI       AIConfig       `mapstructure:"ai"`       // AI 服务配置
	College  CollegeConfig  `mapstructure:"college"`  // 学院信息
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`            // 监听端口，默认 8080
	Mode           string        `mapstructure:"mode"`            // 运行模式: debug / release
	CORS           []string      `mapstructure:"cors"`            // CORS 允许的域名
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 单次请求的处理上限
}

// StoreConfig 选择消息存储实现，只在启动时读取一次
type StoreConfig struct {
	Type string `mapstructure:"type"` // memory / database
}

// DatabaseConfig 数据库连接配置
// DSN 不为空时直接使用，否则由各字段拼接
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`         // mysql / postgres / sqlite
	DSN          string `mapstructure:"dsn"`            // 完整连接串（如 Supabase 提供的 URL）
	Host         string `mapstructure:"host"`           // 数据库主机地址
	Port         int    `mapstructure:"port"`           // 数据库端口
	Username     string `mapstructure:"username"`       // 数据库用户名
	Password     string `mapstructure:"password"`       // 数据库密码
	Name         string `mapstructure:"name"`           // 数据库名称（sqlite 为文件路径）
	Charset      string `mapstructure:"charset"`        // 字符集（mysql）
	SSLMode      string `mapstructure:"sslmode"`        // SSL 模式（postgres）
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `mapstructure:"max_open_conns"` // 最大打开连接数
	MaxLifetime  int    `mapstructure:"max_lifetime"`   // 连接最大生命周期（秒）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`   // 是否启用（限流依赖 Redis）
	Host     string `mapstructure:"host"`      // Redis 主机地址
	Port     int    `mapstructure:"port"`      // Redis 端口
	Username string `mapstructure:"username"`  // Redis 用户名
	Password string `mapstructure:"password"`  // Redis 密码
	DB       int    `mapstructure:"db"`        // 数据库索引 (0-15)
	PoolSize int    `mapstructure:"pool_size"` // 连接池大小
}

// ChatConfig 对话相关配置
type ChatConfig struct {
	Resolver     string        `mapstructure:"resolver"`      // rules / completion
	HistoryLimit int           `mapstructure:"history_limit"` // 发送给模型的最近消息条数
	RateLimit    int           `mapstructure:"rate_limit"`    // 每个窗口内允许的请求数，0 表示不限
	RateWindow   time.Duration `mapstructure:"rate_window"`   // 限流窗口
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`    // dashscope / ark
	APIKey      string        `mapstructure:"api_key"`     // API Key
	Model       string        `mapstructure:"model"`       // 模型名称
	BaseURL     string        `mapstructure:"base_url"`    // 接口地址
	Region      string        `mapstructure:"region"`      // 区域（ark）
	Timeout     time.Duration `mapstructure:"timeout"`     // 单次调用超时
	Temperature float32       `mapstructure:"temperature"` // 采样温度
	MaxTokens   int           `mapstructure:"max_tokens"`  // 最大输出 token
}

// CollegeConfig 学院知识表
type CollegeConfig struct {
	Name     string `mapstructure:"name"`
	HOD      string `mapstructure:"hod"`
	Location string `mapstructure:"location"`
	Website  string `mapstructure:"website"`
}

// Load 从指定路径加载配置文件
// 支持环境变量覆盖配置项
// 参数:
//   - configPath: 配置文件目录路径 (如 "./configs")
//
// 返回:
//   - *Config: 配置对象
//   - error: 如果加载失败则返回错误
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// 例如: DATABASE_HOST -> database.host
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	// 配置文件不存在时继续使用默认值和环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查枚举类配置项
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreMemory, StoreDatabase:
	default:
		return fmt.Errorf("unknown store.type %q", c.Store.Type)
	}

	if c.Store.Type == StoreDatabase {
		switch c.Database.Driver {
		case "mysql", "postgres", "sqlite":
		default:
			return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
		}
	}

	switch c.Chat.Resolver {
	case ResolverRules:
	case ResolverCompletion:
		switch c.AI.Provider {
		case ProviderDashScope, ProviderArk:
		default:
			return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
		}
	default:
		return fmt.Errorf("unknown chat.resolver %q", c.Chat.Resolver)
	}

	if c.Chat.HistoryLimit < 1 {
		return fmt.Errorf("chat.history_limit must be positive, got %d", c.Chat.HistoryLimit)
	}
	return nil
}

// Addr 返回 HTTP 监听地址
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// bindEnvVariables 绑定环境变量到配置项
func bindEnvVariables(v *viper.Viper) {
	// 服务器配置
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	v.BindEnv("store.type", "STORE_TYPE")

	// 数据库配置，兼容 Supabase 的连接串变量
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN", "SUPABASE_DB_URL")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.username", "DATABASE_USERNAME")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.name", "DATABASE_NAME")

	// Redis 配置
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.username", "REDIS_USERNAME")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("chat.resolver", "CHAT_RESOLVER")

	// AI 配置
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.api_key", "AI_API_KEY", "QWEN_API_KEY", "ARK_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
}

// setDefaults 设置配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.request_timeout", "60s")

	v.SetDefault("store.type", StoreMemory)

	// 连接池默认最多 10 个连接，连接 30 秒后回收
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "fetw")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "require")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_lifetime", 30)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("chat.resolver", ResolverRules)
	v.SetDefault("chat.history_limit", 10)
	v.SetDefault("chat.rate_limit", 0)
	v.SetDefault("chat.rate_window", "1m")

	v.SetDefault("ai.provider", ProviderDashScope)
	v.SetDefault("ai.model", "qwen-turbo")
	v.SetDefault("ai.base_url", "") // 为空时各提供方使用自己的默认地址
	v.SetDefault("ai.region", "cn-beijing")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 512)

	v.SetDefault("college.name", "Faculty of Engineering and Technology (FETW), Sharnbasva University")
	v.SetDefault("college.hod", "Dr. Nagveeni K")
	v.SetDefault("college.location", "SB Campus Ground, Vidya Nagar, Kalaburgi, Karnataka, India")
	v.SetDefault("college.website", "https://sharnbasvauniversity.edu.in/")
}
