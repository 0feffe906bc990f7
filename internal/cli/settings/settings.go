// Package settings 管理 fetwchat 客户端的本地配置
// 配置保存在 ~/.fetwchat/config.yaml
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"fetw-assistant/pkg/util"
)

// DefaultServerURL 未配置时使用的服务器地址
const DefaultServerURL = "http://localhost:8080"

// Settings 客户端配置
type Settings struct {
	v    *viper.Viper
	path string
}

// Dir 返回配置目录
// FETWCHAT_HOME 不为空时使用它，否则为 ~/.fetwchat
func Dir() (string, error) {
	if dir := os.Getenv("FETWCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户目录失败: %w", err)
	}
	return filepath.Join(home, ".fetwchat"), nil
}

// Load 读取配置目录下的 config.yaml
// 文件不存在时创建，并生成一个新的会话 ID
func Load(dir string) (*Settings, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建配置目录失败: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("server.url", DefaultServerURL)
	v.SetDefault("session.id", "")

	// FETWCHAT_SERVER_URL 覆盖 server.url
	v.SetEnvPrefix("fetwchat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("读取配置失败: %w", err)
			}
		}
	}

	s := &Settings{v: v, path: path}
	if s.SessionID() == "" {
		if _, err := s.NewSession(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path 返回配置文件路径
func (s *Settings) Path() string {
	return s.path
}

// ServerURL 返回服务器地址，不带结尾的 /
func (s *Settings) ServerURL() string {
	return strings.TrimRight(s.v.GetString("server.url"), "/")
}

// SessionID 返回当前会话 ID
func (s *Settings) SessionID() string {
	return s.v.GetString("session.id")
}

// SetServerURL 覆盖服务器地址，下次保存时一并写入文件
func (s *Settings) SetServerURL(url string) {
	s.v.Set("server.url", url)
}

// SetSessionID 覆盖会话 ID，下次保存时一并写入文件
func (s *Settings) SetSessionID(id string) {
	s.v.Set("session.id", id)
}

// NewSession 生成新的会话 ID 并写回配置文件
func (s *Settings) NewSession() (string, error) {
	id := util.NewSessionID()
	s.v.Set("session.id", id)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return "", fmt.Errorf("保存配置失败: %w", err)
	}
	return id, nil
}
