package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
	"unlockdesk/pkg/store"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin operations",
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id: %q", arg)
	}
	return id, nil
}

var adminApptCmd = &cobra.Command{
	Use:   "appointments",
	Short: "List appointments across the platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _ := cmd.Flags().GetString("status")
		master, _ := cmd.Flags().GetInt64("master")
		clientID, _ := cmd.Flags().GetInt64("client")
		search, _ := cmd.Flags().GetString("search")
		return withClient(cmd, func(ctx context.Context, client *api.Client, store *store.Store) error {
			items, err := client.AdminAppointments(ctx, models.AdminAppointmentFilter{
				Status: status.Status(st),
				Master: master,
				Client: clientID,
				Search: search,
			})
			if err != nil {
				return err
			}
			printAppointments(items)
			return nil
		})
	},
}

var adminConfirmCmd = &cobra.Command{
	Use:   "confirm-payment <id>",
	Short: "Confirm a payment on the master's behalf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.AdminConfirmPayment(ctx, id); err != nil {
				return err
			}
			fmt.Println("confirmed")
			return nil
		})
	},
}

var adminSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Manually override an appointment status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			set := models.SetStatus{Status: status.Status(args[1]), Note: note}
			if err := client.AdminSetStatus(ctx, id, set); err != nil {
				return err
			}
			fmt.Println("status updated")
			return nil
		})
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			users, err := client.AdminUsers(ctx, search)
			if err != nil {
				return err
			}
			for _, u := range users {
				line := fmt.Sprintf("#%d  %s  %s", u.ID, u.Username, u.Role)
				if u.IsBanned {
					line += "  BANNED"
				}
				fmt.Println(line)
			}
			return nil
		})
	},
}

var adminMastersCmd = &cobra.Command{
	Use:   "masters",
	Short: "List masters and their activation state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			masters, err := client.AdminMasters(ctx)
			if err != nil {
				return err
			}
			for _, m := range masters {
				state := "suspended"
				if m.IsMasterActive {
					state = "active"
				}
				fmt.Printf("#%d  %s  %s\n", m.ID, m.Username, state)
			}
			return nil
		})
	},
}

var adminBanCmd = &cobra.Command{
	Use:   "ban <user-id>",
	Short: "Ban a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.AdminBanUser(ctx, id, reason); err != nil {
				return err
			}
			fmt.Println("banned")
			return nil
		})
	},
}

// adminUserAction builds a subcommand for one user-id admin endpoint.
func adminUserAction(use, short, done string, call func(*api.Client, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
				if err := call(client, ctx, id); err != nil {
					return err
				}
				fmt.Println(done)
				return nil
			})
		},
	}
}

var adminSetRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <role>",
	Short: "Change a user's role (client, master, admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.AdminSetUserRole(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Println("role updated")
			return nil
		})
	},
}

var adminSystemCmd = &cobra.Command{
	Use:   "system",
	Short: "Platform status, settings and maintenance actions",
}

var adminSystemStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show SLA config and daily metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			sys, err := client.AdminSystemStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("sla: response %d min, completion %d h\n", sys.SLA.ResponseMinutes, sys.SLA.CompletionHours)
			if m := sys.Metrics; m != nil {
				fmt.Printf("%s: gmv=%d new_users=%d new=%d paid=%d completed=%d\n",
					m.Date, m.GMVTotal, m.NewUsers, m.NewAppointments, m.PaidAppointments, m.CompletedAppointments)
			}
			return nil
		})
	},
}

var adminSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update platform settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			settings, err := client.AdminSystemSettings(ctx)
			if err != nil {
				return err
			}
			changed := false
			if v, _ := cmd.Flags().GetString("bank"); cmd.Flags().Changed("bank") {
				settings.BankRequisites = v
				changed = true
			}
			if v, _ := cmd.Flags().GetString("crypto"); cmd.Flags().Changed("crypto") {
				settings.CryptoRequisites = v
				changed = true
			}
			if v, _ := cmd.Flags().GetInt("sla-response"); cmd.Flags().Changed("sla-response") {
				settings.SLAResponseMinutes = v
				changed = true
			}
			if v, _ := cmd.Flags().GetInt("sla-completion"); cmd.Flags().Changed("sla-completion") {
				settings.SLACompletionHours = v
				changed = true
			}
			if changed {
				if err := client.AdminUpdateSystemSettings(ctx, settings); err != nil {
					return err
				}
				fmt.Println("settings updated")
				return nil
			}
			b, _ := json.MarshalIndent(settings, "", "  ")
			fmt.Println(string(b))
			return nil
		})
	},
}

var adminSystemActionCmd = &cobra.Command{
	Use:   "action <name>",
	Short: "Run a maintenance action (e.g. recalc_metrics)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.AdminRunSystemAction(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		})
	},
}

var adminRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage automation rules",
}

var adminRulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List automation rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			rules, err := client.AdminRules(ctx)
			if err != nil {
				return err
			}
			for _, r := range rules {
				state := "off"
				if r.IsActive {
					state = "on"
				}
				fmt.Printf("#%d  [%s]  %s  on %s\n", r.ID, state, r.Name, r.TriggerEventType)
			}
			return nil
		})
	},
}

var adminRulesAddCmd = &cobra.Command{
	Use:   "add <name> <trigger-event>",
	Short: "Create an automation rule from JSON condition/action",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		condRaw, _ := cmd.Flags().GetString("condition")
		actRaw, _ := cmd.Flags().GetString("action")
		rule := models.AutomationRule{Name: args[0], TriggerEventType: args[1], IsActive: true}
		if condRaw != "" {
			if err := json.Unmarshal([]byte(condRaw), &rule.Condition); err != nil {
				return fmt.Errorf("invalid condition json: %w", err)
			}
		}
		if actRaw != "" {
			if err := json.Unmarshal([]byte(actRaw), &rule.Action); err != nil {
				return fmt.Errorf("invalid action json: %w", err)
			}
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			created, err := client.AdminCreateRule(ctx, rule)
			if err != nil {
				return err
			}
			fmt.Printf("created rule #%d\n", created.ID)
			return nil
		})
	},
}

var adminRulesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a rule on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid rule id: %q", args[0])
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			rules, err := client.AdminRules(ctx)
			if err != nil {
				return err
			}
			for _, r := range rules {
				if r.ID != id {
					continue
				}
				r.IsActive = !r.IsActive
				if _, err := client.AdminUpdateRule(ctx, id, r); err != nil {
					return err
				}
				state := "off"
				if r.IsActive {
					state = "on"
				}
				fmt.Printf("rule #%d is now %s\n", id, state)
				return nil
			}
			return fmt.Errorf("rule #%d not found", id)
		})
	},
}

var adminRulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an automation rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid rule id: %q", args[0])
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.AdminDeleteRule(ctx, id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		})
	},
}

func init() {
	adminApptCmd.Flags().String("status", "", "Filter by status")
	adminApptCmd.Flags().Int64("master", 0, "Filter by assigned master id")
	adminApptCmd.Flags().Int64("client", 0, "Filter by client id")
	adminApptCmd.Flags().String("search", "", "Free-text search")
	adminSetStatusCmd.Flags().String("note", "", "Audit note for the override")
	adminUsersCmd.Flags().String("search", "", "Filter by username")
	adminBanCmd.Flags().String("reason", "", "Ban reason")
	adminSettingsCmd.Flags().String("bank", "", "Bank requisites")
	adminSettingsCmd.Flags().String("crypto", "", "Crypto requisites")
	adminSettingsCmd.Flags().Int("sla-response", 0, "SLA first-response window, minutes")
	adminSettingsCmd.Flags().Int("sla-completion", 0, "SLA completion window, hours")
	adminRulesAddCmd.Flags().String("condition", "", "Condition JSON")
	adminRulesAddCmd.Flags().String("action", "", "Action JSON")

	adminSystemCmd.AddCommand(adminSystemStatusCmd)
	adminSystemCmd.AddCommand(adminSettingsCmd)
	adminSystemCmd.AddCommand(adminSystemActionCmd)

	adminRulesCmd.AddCommand(adminRulesListCmd)
	adminRulesCmd.AddCommand(adminRulesAddCmd)
	adminRulesCmd.AddCommand(adminRulesToggleCmd)
	adminRulesCmd.AddCommand(adminRulesDeleteCmd)

	adminCmd.AddCommand(adminApptCmd)
	adminCmd.AddCommand(adminConfirmCmd)
	adminCmd.AddCommand(adminSetStatusCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminMastersCmd)
	adminCmd.AddCommand(adminBanCmd)
	adminCmd.AddCommand(adminUserAction("unban", "Lift a ban", "unbanned", func(c *api.Client, ctx context.Context, id int64) error {
		return c.AdminUnbanUser(ctx, id)
	}))
	adminCmd.AddCommand(adminSetRoleCmd)
	adminCmd.AddCommand(adminUserAction("activate", "Activate a master account", "activated", func(c *api.Client, ctx context.Context, id int64) error {
		return c.AdminActivateMaster(ctx, id)
	}))
	adminCmd.AddCommand(adminUserAction("suspend", "Suspend a master account", "suspended", func(c *api.Client, ctx context.Context, id int64) error {
		return c.AdminSuspendMaster(ctx, id)
	}))
	adminCmd.AddCommand(adminSystemCmd)
	adminCmd.AddCommand(adminRulesCmd)
}
