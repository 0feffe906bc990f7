// Package cmd 实现 fetwchat 命令
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fetw-assistant/internal/cli/api"
	"fetw-assistant/internal/cli/settings"
	"fetw-assistant/pkg/util"
)

var (
	cfg    *settings.Settings
	client *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "fetwchat",
	Short: "FETW Assistant 终端客户端",
	Long: `FETW Assistant 终端客户端

直接运行进入交互模式，可以询问学院信息或基础电子学概念。
会话 ID 保存在 ~/.fetwchat/config.yaml，重新打开后继续同一个会话。`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runInteractive,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("server", "s", "", "服务器地址 (默认: http://localhost:8080)")
	rootCmd.PersistentFlags().String("session", "", "使用指定的会话 ID（不写入配置）")
}

func initConfig(cmd *cobra.Command, args []string) error {
	dir, err := settings.Dir()
	if err != nil {
		return err
	}
	cfg, err = settings.Load(dir)
	if err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.SetServerURL(server)
	}
	if session, _ := cmd.Flags().GetString("session"); session != "" {
		if !util.IsSessionID(session) {
			fmt.Fprintf(cmd.ErrOrStderr(), "警告: 会话 ID %q 不是 UUID 格式，可能与其他客户端冲突\n", session)
		}
		cfg.SetSessionID(session)
	}

	client = api.NewClient(cfg.ServerURL())
	return nil
}

// runInteractive 交互式主流程
func runInteractive(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	printBanner(out)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if suggestions, err := client.Suggestions(ctx); err == nil && len(suggestions) > 0 {
		fmt.Fprintln(out, "可以试试这些问题：")
		for _, s := range suggestions {
			fmt.Fprintf(out, "  • %s\n", s)
		}
		fmt.Fprintln(out)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			if err := printHistory(ctx, out); err != nil {
				fmt.Fprintf(out, "✗ %v\n", err)
			}
			continue
		case "/new":
			id, err := cfg.NewSession()
			if err != nil {
				fmt.Fprintf(out, "✗ %v\n", err)
				continue
			}
			fmt.Fprintf(out, "已开始新会话 %s\n", id)
			continue
		}

		if err := sendAndPrint(ctx, out, line); err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
		}
	}
}

func printBanner(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔════════════════════════════════════════════════╗")
	fmt.Fprintln(out, "║              FETW Assistant                    ║")
	fmt.Fprintln(out, "║   /history 查看历史  /new 新会话  /quit 退出   ║")
	fmt.Fprintln(out, "╚════════════════════════════════════════════════╝")
	fmt.Fprintf(out, "  服务器: %s\n  会话:   %s\n\n", cfg.ServerURL(), cfg.SessionID())
}

func sendAndPrint(ctx context.Context, out io.Writer, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	reply, err := client.SendMessage(ctx, cfg.SessionID(), text)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "assistant> %s\n", reply.Message)
	return nil
}

func printHistory(ctx context.Context, out io.Writer) error {
	messages, err := client.History(ctx, cfg.SessionID())
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(out, "（没有消息）")
		return nil
	}
	for _, m := range messages {
		fmt.Fprintf(out, "[%s] %s> %s\n", m.CreatedAt.Local().Format("15:04:05"), m.Role, m.Content)
	}
	return nil
}
