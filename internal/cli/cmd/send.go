package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "发送一条消息并打印回复",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return sendAndPrint(ctx, cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "显示当前会话的全部消息",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return printHistory(ctx, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
}
