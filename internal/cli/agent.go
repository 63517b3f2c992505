package cli

import (
	"context"

	"github.com/spf13/cobra"

	"unlockdesk/internal/app"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/shutdown"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the background agent: pollers, local cache and metrics",
	RunE:  runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("agent init failed", err, cfg.Storage.DBPath)
	}

	ctx, stop := shutdown.SetupSignalHandler(context.Background())
	defer stop()

	logger.Info("agent_starting", "version", version)
	return a.Run(ctx)
}
