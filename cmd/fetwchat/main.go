// Package main 是 fetwchat 终端客户端的入口点
package main

import (
	"github.com/joho/godotenv"

	"fetw-assistant/internal/cli/cmd"
)

func main() {
	// 可选的 .env，用于设置 FETWCHAT_SERVER_URL 等
	_ = godotenv.Load()
	cmd.Execute()
}
