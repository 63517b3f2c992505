package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/store"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Notifications",
}

var notifListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			items, err := client.Notifications(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("no notifications")
				return nil
			}
			for _, n := range items {
				marker := " "
				if !n.IsRead {
					marker = "*"
				}
				fmt.Printf("%s %s  %s\n", marker, n.CreatedAt.Format("02.01 15:04"), n.Title)
				if n.Message != "" {
					fmt.Printf("    %s\n", n.Message)
				}
			}
			return nil
		})
	},
}

var notifUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Print the unread count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			count, err := client.UnreadNotifications(ctx)
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		})
	},
}

var notifReadCmd = &cobra.Command{
	Use:   "mark-read",
	Short: "Mark all notifications as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.MarkNotificationsRead(ctx); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		})
	},
}

func init() {
	notificationsCmd.AddCommand(notifListCmd)
	notificationsCmd.AddCommand(notifUnreadCmd)
	notificationsCmd.AddCommand(notifReadCmd)
}
