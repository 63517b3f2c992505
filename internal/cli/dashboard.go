package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/store"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the role-aware summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			sum, err := client.Dashboard(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("active: %d  completed: %d  unread: %d\n",
				sum.ActiveAppointments, sum.CompletedAppointments, sum.UnreadMessages)
			if sum.GMVTotal > 0 {
				fmt.Printf("gmv: %d\n", sum.GMVTotal)
			}
			return nil
		})
	},
}
