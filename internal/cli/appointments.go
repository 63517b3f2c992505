package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/auth"
	"unlockdesk/pkg/config"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
	"unlockdesk/pkg/store"
	"unlockdesk/pkg/timeline"
	"unlockdesk/pkg/watch"
)

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"appt"},
	Short:   "Browse and act on unlock appointments",
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid appointment id: %q", arg)
	}
	return id, nil
}

func printAppointments(items []models.Appointment) {
	if len(items) == 0 {
		fmt.Println("no appointments")
		return
	}
	for _, a := range items {
		vis := status.ResolveVisual(a.Status, a.SLABreached)
		line := fmt.Sprintf("#%d  %s %s  [%s]", a.ID, a.Brand, a.Model, vis.Label)
		if a.TotalPrice > 0 {
			line += fmt.Sprintf("  %d %s", a.TotalPrice, a.Currency)
		}
		if a.UnreadCount > 0 {
			line += fmt.Sprintf("  (%d unread)", a.UnreadCount)
		}
		fmt.Println(line)
	}
}

var apptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your appointments (or the open pool / active work)",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, _ := cmd.Flags().GetBool("new")
		active, _ := cmd.Flags().GetBool("active")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			var (
				items []models.Appointment
				err   error
			)
			switch {
			case pool:
				items, err = client.NewAppointments(ctx)
			case active:
				items, err = client.ActiveAppointments(ctx)
			default:
				items, err = client.MyAppointments(ctx)
			}
			if err != nil {
				return err
			}
			printAppointments(items)
			return nil
		})
	},
}

var apptShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one appointment with its timeline and next action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			a, err := client.Appointment(ctx, id)
			if err != nil {
				return err
			}
			vis := status.ResolveVisual(a.Status, a.SLABreached)
			fmt.Printf("#%d  %s %s (%s)\n", a.ID, a.Brand, a.Model, a.LockType)
			fmt.Printf("status: %s  step %d/%d\n", vis.Label, status.StepIndex(a.Status)+1, len(status.ProgressOrder))
			if vis.Hint != "" {
				fmt.Println(vis.Hint)
			}
			if a.TotalPrice > 0 {
				fmt.Printf("price: %d %s\n", a.TotalPrice, a.Currency)
			}

			role := status.RoleClient
			if claims, err := auth.ParseClaims(client.Tokens().Token()); err == nil {
				role = status.Role(claims.Role)
			}
			action := status.ResolveAction(a.Status, role)
			fmt.Printf("next: %s\n", action.Label)

			events, err := client.AppointmentEvents(ctx, id, 0)
			if err != nil {
				return err
			}
			feed := timeline.NewFeed()
			feed.Merge(events)
			fmt.Println("\ntimeline:")
			for _, ev := range timeline.Resolve(feed, &a) {
				line := fmt.Sprintf("  %s  %s", ev.CreatedAt.Format("02.01 15:04"), ev.EventType)
				if ev.Note != "" {
					line += "  " + ev.Note
				}
				fmt.Println(line)
			}
			return nil
		})
	},
}

var apptWatchCmd = &cobra.Command{
	Use:   "watch <id>",
	Short: "Follow an appointment's status and timeline until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, cfg *config.Config, client *api.Client, st *store.Store) error {
			w := watch.NewAppointmentWatch(client, st, id, cfg.Poll.Detail.Duration())
			w.Runner().Start(ctx)
			defer w.Runner().Stop()

			seen := make(map[models.EntryID]bool)
			var last status.Status
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				if a, ok := w.Snapshot(); ok && a.Status != last {
					last = a.Status
					vis := status.ResolveVisual(a.Status, a.SLABreached)
					fmt.Printf("status: %s  step %d/%d\n", vis.Label, status.StepIndex(a.Status)+1, len(status.ProgressOrder))
				}
				events := w.Timeline()
				// Timeline is newest-first; print unseen entries in order
				for i := len(events) - 1; i >= 0; i-- {
					ev := events[i]
					if seen[ev.ID] {
						continue
					}
					seen[ev.ID] = true
					line := fmt.Sprintf("%s  %s", ev.CreatedAt.Format("02.01 15:04"), ev.EventType)
					if ev.Note != "" {
						line += "  " + ev.Note
					}
					fmt.Println(line)
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

var apptCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new unlock appointment",
	RunE: func(cmd *cobra.Command, args []string) error {
		brand, _ := cmd.Flags().GetString("brand")
		model, _ := cmd.Flags().GetString("model")
		lockType, _ := cmd.Flags().GetString("lock-type")
		hasPC, _ := cmd.Flags().GetBool("has-pc")
		desc, _ := cmd.Flags().GetString("description")
		photo, _ := cmd.Flags().GetString("photo")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			a, err := client.CreateAppointment(ctx, models.CreateAppointment{
				Brand:       brand,
				Model:       model,
				LockType:    models.LockType(lockType),
				HasPC:       hasPC,
				Description: desc,
				PhotoPath:   photo,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created appointment #%d\n", a.ID)
			return nil
		})
	},
}

// simpleAction builds a subcommand that takes an id and calls one
// transition endpoint.
func simpleAction(use, short string, call func(*api.Client, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
				if err := call(client, ctx, id); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			})
		},
	}
}

var apptSetPriceCmd = &cobra.Command{
	Use:   "set-price <id> <amount>",
	Short: "Quote the total price (master)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		price, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || price <= 0 {
			return fmt.Errorf("invalid price: %q", args[1])
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.SetPrice(ctx, id, price); err != nil {
				return err
			}
			fmt.Println("price set")
			return nil
		})
	},
}

var apptUploadProofCmd = &cobra.Command{
	Use:   "upload-proof <id> <file>",
	Short: "Upload the payment proof document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.UploadPaymentProof(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Println("uploaded")
			return nil
		})
	},
}

var apptMarkPaidCmd = &cobra.Command{
	Use:   "mark-paid <id>",
	Short: "Mark the invoice as paid (client)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		method, _ := cmd.Flags().GetString("method")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.MarkPaid(ctx, id, models.PaymentMethod(method)); err != nil {
				return err
			}
			fmt.Println("marked paid")
			return nil
		})
	},
}

var apptSignalCmd = &cobra.Command{
	Use:   "signal <id> <signal>",
	Short: "Send a client signal (e.g. still_locked) on a completed job",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		comment := ""
		if len(args) == 3 {
			comment = args[2]
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			if err := client.ClientSignal(ctx, id, args[1], comment); err != nil {
				return err
			}
			fmt.Println("signal sent")
			return nil
		})
	},
}

var apptReviewCmd = &cobra.Command{
	Use:   "review <id> <rating>",
	Short: "Leave a review after completion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("rating must be 1..5")
		}
		comment, _ := cmd.Flags().GetString("comment")
		ofClient, _ := cmd.Flags().GetBool("of-client")
		flags, _ := cmd.Flags().GetStringSlice("flag")
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			review := models.Review{Rating: rating, Comment: comment, Flags: flags}
			if ofClient {
				if err := client.ReviewClient(ctx, id, review); err != nil {
					return err
				}
			} else {
				if err := client.ReviewMaster(ctx, id, review); err != nil {
					return err
				}
			}
			fmt.Println("review saved")
			return nil
		})
	},
}

var apptRepeatCmd = &cobra.Command{
	Use:   "repeat <id>",
	Short: "Create a new appointment from a finished one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *api.Client, st *store.Store) error {
			a, err := client.Repeat(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("created appointment #%d\n", a.ID)
			return nil
		})
	},
}

func init() {
	apptListCmd.Flags().Bool("new", false, "List the open pool (master)")
	apptListCmd.Flags().Bool("active", false, "List active work (master)")

	apptCreateCmd.Flags().String("brand", "", "Device brand")
	apptCreateCmd.Flags().String("model", "", "Device model")
	apptCreateCmd.Flags().String("lock-type", string(models.LockPIN), "Lock type: PIN, GOOGLE, APPLE_ID, OTHER")
	apptCreateCmd.Flags().Bool("has-pc", false, "A computer is available during the work")
	apptCreateCmd.Flags().String("description", "", "Problem description")
	apptCreateCmd.Flags().String("photo", "", "Lock screen photo path")
	_ = apptCreateCmd.MarkFlagRequired("brand")
	_ = apptCreateCmd.MarkFlagRequired("model")

	apptMarkPaidCmd.Flags().String("method", string(models.PayBankTransfer), "Payment method: bank_transfer or crypto")

	apptReviewCmd.Flags().String("comment", "", "Review text")
	apptReviewCmd.Flags().Bool("of-client", false, "Review the client instead of the master")
	apptReviewCmd.Flags().StringSlice("flag", nil, "Behavior flag for client reviews (repeatable)")

	appointmentsCmd.AddCommand(apptListCmd)
	appointmentsCmd.AddCommand(apptShowCmd)
	appointmentsCmd.AddCommand(apptWatchCmd)
	appointmentsCmd.AddCommand(apptCreateCmd)
	appointmentsCmd.AddCommand(simpleAction("take", "Take an appointment from the pool (master)", func(c *api.Client, ctx context.Context, id int64) error {
		return c.Take(ctx, id)
	}))
	appointmentsCmd.AddCommand(simpleAction("decline", "Decline a reviewed appointment (master)", func(c *api.Client, ctx context.Context, id int64) error {
		return c.Decline(ctx, id)
	}))
	appointmentsCmd.AddCommand(apptSetPriceCmd)
	appointmentsCmd.AddCommand(apptUploadProofCmd)
	appointmentsCmd.AddCommand(apptMarkPaidCmd)
	appointmentsCmd.AddCommand(simpleAction("confirm-payment", "Confirm the received payment (master)", func(c *api.Client, ctx context.Context, id int64) error {
		return c.ConfirmPayment(ctx, id)
	}))
	appointmentsCmd.AddCommand(simpleAction("start", "Start the unlock work (master)", func(c *api.Client, ctx context.Context, id int64) error {
		return c.StartWork(ctx, id)
	}))
	appointmentsCmd.AddCommand(simpleAction("complete", "Mark the work as done (master)", func(c *api.Client, ctx context.Context, id int64) error {
		return c.CompleteWork(ctx, id)
	}))
	appointmentsCmd.AddCommand(apptSignalCmd)
	appointmentsCmd.AddCommand(apptReviewCmd)
	appointmentsCmd.AddCommand(apptRepeatCmd)
}
