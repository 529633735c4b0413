package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tripd/tripd/internal/chat"
	"github.com/tripd/tripd/internal/weather"
)

var (
	chatServer string
	chatUser   string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the travel assistant in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatServer, "server", "http://127.0.0.1:4700", "gateway base URL")
	chatCmd.Flags().StringVar(&chatUser, "user", "", "user ID for memory recall and storage")
}

func runChat() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := chat.NewStore()
	sess := chat.NewSession(store, chat.NewClient(chatServer), weather.NewClient(), chatUser)

	printStep("已连接 %s（/new 新对话，/stop 停止生成，/quit 退出）", chatServer)

	scanner := bufio.NewScanner(os.Stdin)
	printPrompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "/quit":
			sess.Stop()
			return nil
		case "/new":
			store.NewChat()
			printSuccess("开始新对话")
		case "/stop":
			if sess.IsGenerating() {
				sess.Stop()
			} else {
				printWarning("当前没有正在生成的回答")
			}
		default:
			// Sends run in the background so /stop stays available while
			// the answer streams.
			go func(msg string) {
				if err := sess.SendMessage(ctx, msg, nil); err != nil {
					printError("%v", err)
				}
				printReply(store)
			}(line)
		}
		printPrompt()
	}
	return scanner.Err()
}
