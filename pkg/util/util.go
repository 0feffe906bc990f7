// Package util 提供通用工具函数
package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
// 使用 Google 的 uuid 库生成 UUID v4
// 返回:
//   - string: UUID 字符串（不含连字符），用作请求 ID
func GenerateUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewSessionID 生成会话 ID
// 保留连字符，与浏览器端 crypto.randomUUID() 的格式一致
func NewSessionID() string {
	return uuid.NewString()
}

// IsSessionID 判断字符串是否为合法的 UUID 格式会话 ID
func IsSessionID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// TruncateString 截断字符串到指定长度
// 如果字符串超过指定长度，截断并添加 "..."
// 按 rune 截断，不会切开多字节字符
// 参数:
//   - s: 原字符串
//   - maxLen: 最大长度（字符数）
//
// 返回:
//   - string: 截断后的字符串
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
