package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/chat"
	"unlockdesk/pkg/config"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/store"
	"unlockdesk/pkg/watch"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Appointment chat and quick replies",
}

var chatListCmd = &cobra.Command{
	Use:   "list <appointment-id>",
	Short: "Show the chat thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		markRead, _ := cmd.Flags().GetBool("mark-read")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			msgs, err := client.Messages(ctx, id, 0)
			if err != nil {
				return err
			}
			thread := chat.NewThread()
			thread.Merge(msgs)
			for _, m := range thread.Messages() {
				text := m.Text
				if m.Deleted {
					text = "(deleted)"
				}
				fmt.Printf("%s  %s: %s\n", m.CreatedAt.Format("02.01 15:04"), m.SenderUsername, text)
				if m.FileURL != "" && !m.Deleted {
					fmt.Printf("          file: %s\n", m.FileURL)
				}
			}
			if markRead {
				if last := thread.Cursor(); last > 0 {
					return client.MarkRead(ctx, id, last)
				}
			}
			return nil
		})
	},
}

var chatTailCmd = &cobra.Command{
	Use:   "tail <appointment-id>",
	Short: "Follow the chat thread until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		autoRead, _ := cmd.Flags().GetBool("auto-read")
		return withSession(cmd, func(ctx context.Context, cfg *config.Config, client *api.Client, st *store.Store) error {
			w := watch.NewChatWatch(client, st, id, autoRead, cfg.Poll.Chat.Duration())
			w.Runner().Start(ctx)
			defer w.Runner().Stop()

			seen := make(map[models.EntryID]bool)
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				for _, m := range w.Messages() {
					if seen[m.ID] {
						continue
					}
					seen[m.ID] = true
					text := m.Text
					if m.Deleted {
						text = "(deleted)"
					}
					fmt.Printf("%s  %s: %s\n", m.CreatedAt.Format("02.01 15:04"), m.SenderUsername, text)
					if m.FileURL != "" && !m.Deleted {
						fmt.Printf("          file: %s\n", m.FileURL)
					}
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <appointment-id> <text>",
	Short: "Send a message; masters can use /command quick replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		filePath, _ := cmd.Flags().GetString("file")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			user, err := client.Me(ctx)
			if err != nil {
				return err
			}
			outbox := chat.NewOutbox(chat.NewThread(), client, user)
			if replies, err := client.QuickReplies(ctx); err == nil {
				outbox.SetQuickReplies(replies)
			}
			msg, err := outbox.Send(ctx, id, args[1], filePath)
			if err != nil {
				var sendErr *chat.SendError
				if errors.As(err, &sendErr) {
					return fmt.Errorf("send failed, draft kept: %q: %w", sendErr.Draft, sendErr.Err)
				}
				return err
			}
			fmt.Printf("sent #%s\n", msg.ID)
			return nil
		})
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete <message-id>",
	Short: "Delete one of your messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid message id: %q", args[0])
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.DeleteMessage(ctx, id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		})
	},
}

var repliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "Manage quick replies (master)",
}

var repliesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your quick replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			replies, err := client.QuickReplies(ctx)
			if err != nil {
				return err
			}
			if len(replies) == 0 {
				fmt.Println("no quick replies")
				return nil
			}
			for _, r := range replies {
				fmt.Printf("#%d  /%s  %s\n", r.ID, r.Command, r.Title)
			}
			return nil
		})
	},
}

var repliesAddCmd = &cobra.Command{
	Use:   "add <command> <text>",
	Short: "Create a quick reply invoked as /<command>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			r, err := client.CreateQuickReply(ctx, models.QuickReply{Command: args[0], Title: title, Text: args[1]})
			if err != nil {
				return err
			}
			fmt.Printf("created /%s (#%d)\n", r.Command, r.ID)
			return nil
		})
	},
}

var repliesUpdateCmd = &cobra.Command{
	Use:   "update <id> <text>",
	Short: "Replace a quick reply's text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid quick reply id: %q", args[0])
		}
		title, _ := cmd.Flags().GetString("title")
		command, _ := cmd.Flags().GetString("command")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			r, err := client.UpdateQuickReply(ctx, id, models.QuickReply{Command: command, Title: title, Text: args[1]})
			if err != nil {
				return err
			}
			fmt.Printf("updated /%s\n", r.Command)
			return nil
		})
	},
}

var repliesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a quick reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid quick reply id: %q", args[0])
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.DeleteQuickReply(ctx, id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		})
	},
}

func init() {
	chatListCmd.Flags().Bool("mark-read", false, "Advance the read marker to the newest message")
	chatTailCmd.Flags().Bool("auto-read", false, "Advance the read marker as messages arrive")
	chatSendCmd.Flags().String("file", "", "Attach a file")
	repliesAddCmd.Flags().String("title", "", "Display title")
	repliesUpdateCmd.Flags().String("title", "", "Display title")
	repliesUpdateCmd.Flags().String("command", "", "Command the reply is invoked with")

	repliesCmd.AddCommand(repliesListCmd)
	repliesCmd.AddCommand(repliesAddCmd)
	repliesCmd.AddCommand(repliesUpdateCmd)
	repliesCmd.AddCommand(repliesDeleteCmd)

	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatTailCmd)
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(repliesCmd)
}
