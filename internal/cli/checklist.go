package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"unlockdesk/pkg/checklist"
	"unlockdesk/pkg/store"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Device readiness checklist, kept locally",
}

// withChecklist opens the store and loads the persisted checklist.
func withChecklist(cmd *cobra.Command, fn func(cl *checklist.Checklist) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	cl, err := checklist.Load(st)
	if err != nil {
		return err
	}
	return fn(cl)
}

var checklistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show checklist state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withChecklist(cmd, func(cl *checklist.Checklist) error {
			for _, item := range checklist.Items {
				marker := "[ ]"
				if cl.Checked(item) {
					marker = "[x]"
				}
				fmt.Printf("%s %s  %s\n", marker, item, checklist.Labels[item])
			}
			if cl.Complete() {
				fmt.Println("ready")
			}
			return nil
		})
	},
}

var checklistCheckCmd = &cobra.Command{
	Use:   "check <item>",
	Short: "Mark an item done (internet, power, access, backup)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withChecklist(cmd, func(cl *checklist.Checklist) error {
			return cl.Set(checklist.Item(args[0]), true)
		})
	},
}

var checklistUncheckCmd = &cobra.Command{
	Use:   "uncheck <item>",
	Short: "Clear an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withChecklist(cmd, func(cl *checklist.Checklist) error {
			return cl.Set(checklist.Item(args[0]), false)
		})
	},
}

var checklistResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every item",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withChecklist(cmd, func(cl *checklist.Checklist) error {
			return cl.Reset()
		})
	},
}

func init() {
	checklistCmd.AddCommand(checklistShowCmd)
	checklistCmd.AddCommand(checklistCheckCmd)
	checklistCmd.AddCommand(checklistUncheckCmd)
	checklistCmd.AddCommand(checklistResetCmd)
}
