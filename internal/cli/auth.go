package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/auth"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/store"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and store the session locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := cmd.Flags().GetString("password")
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			res, err := client.Login(ctx, models.Credentials{Username: args[0], Password: password})
			if err != nil {
				return err
			}
			if res.User != nil {
				fmt.Printf("signed in as %s (%s)\n", res.User.Username, res.User.Role)
			} else {
				fmt.Printf("signed in as %s\n", args[0])
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear local tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("signed out")
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := cmd.Flags().GetString("password")
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			res, err := client.Register(ctx, models.Credentials{Username: args[0], Password: password})
			if err != nil {
				return err
			}
			if res.User != nil {
				fmt.Printf("registered %s (%s)\n", res.User.Username, res.User.Role)
			} else {
				fmt.Printf("registered %s\n", args[0])
			}
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			token := client.Tokens().Token()
			if token == "" {
				fmt.Println("no session; run `unlockdesk login`")
				return nil
			}
			claims, err := auth.ParseClaims(token)
			if err != nil {
				return err
			}
			user, err := client.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("user: %s  role: %s  id: %d\n", user.Username, claims.Role, user.ID)
			return nil
		})
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "First-run helpers for a fresh backend",
}

var bootstrapStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the backend still needs an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			status, err := client.BootstrapStatus(ctx)
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(b))
			return nil
		})
	},
}

var bootstrapAdminCmd = &cobra.Command{
	Use:   "admin <username>",
	Short: "Create the first admin account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := cmd.Flags().GetString("password")
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.BootstrapAdmin(ctx, models.Credentials{Username: args[0], Password: password}); err != nil {
				return err
			}
			fmt.Println("admin account created")
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().String("password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("password")
	registerCmd.Flags().String("password", "", "Account password")
	_ = registerCmd.MarkFlagRequired("password")
	bootstrapAdminCmd.Flags().String("password", "", "Admin password")
	_ = bootstrapAdminCmd.MarkFlagRequired("password")
	bootstrapCmd.AddCommand(bootstrapStatusCmd)
	bootstrapCmd.AddCommand(bootstrapAdminCmd)
}
