package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fetw-assistant/internal/model"
)

var newSessionCmd = &cobra.Command{
	Use:   "new-session",
	Short: "生成新的会话 ID 并保存",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cfg.NewSession()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "显示服务器地址和当前会话",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "服务器: %s\n", cfg.ServerURL())
		fmt.Fprintf(out, "会话:   %s\n", cfg.SessionID())
		fmt.Fprintf(out, "配置:   %s\n", cfg.Path())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "实时显示当前会话的新回复（Ctrl+C 退出）",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "正在监听会话 %s ...\n", cfg.SessionID())
		return client.Watch(ctx, cfg.SessionID(), func(m model.Message) {
			fmt.Fprintf(out, "assistant> %s\n", m.Content)
		})
	},
}

func init() {
	rootCmd.AddCommand(newSessionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}
