// Package cli implements the unlockdesk command tree.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/auth"
	"unlockdesk/pkg/config"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/shutdown"
	"unlockdesk/pkg/store"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "unlockdesk",
	Short:         "Client agent and CLI for the remote unlock service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetBuildInfo records version metadata injected at link time.
func SetBuildInfo(v, c, d string) {
	version, commit, buildDate = v, c, d
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./unlockdesk.yaml", "Path to config file")

	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(appointmentsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("unlockdesk %s (%s) built %s\n", version, commit, buildDate)
	},
}

// loadConfig resolves the config path, loads .env and the YAML file, and
// initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load(".env")
	path := config.ResolveConfigPath(cfgPath, cmd.Flags().Changed("config"))
	cfg, _, err := config.LoadEffective(path)
	if err != nil {
		return nil, err
	}
	logger.InitWithLevel(cfg.Logging.Level, cfg.Logging.Sink)
	return cfg, nil
}

// withClient runs fn with a ready API client. The local store is opened
// for the duration of the call so token state persists across commands.
// The agent holds the same store; one-shot commands cannot run while it
// does.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *api.Client, st *store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open local store (is the agent running?): %w", err)
	}
	defer func() { _ = st.Close() }()

	tokens := auth.NewService(st)
	client := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Tokens:    tokens,
		Timeout:   cfg.API.Timeout.Duration(),
		RPS:       cfg.API.RateLimit.RPS,
		Burst:     cfg.API.RateLimit.Burst,
		MaxUpload: cfg.API.MaxUpload.Int64(),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return fn(ctx, client, st)
}

// withSession is withClient without a deadline, for streaming commands
// that follow server state until interrupted. The config is passed
// through so they can honor the configured poll intervals.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, client *api.Client, st *store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open local store (is the agent running?): %w", err)
	}
	defer func() { _ = st.Close() }()

	tokens := auth.NewService(st)
	client := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Tokens:    tokens,
		Timeout:   cfg.API.Timeout.Duration(),
		RPS:       cfg.API.RateLimit.RPS,
		Burst:     cfg.API.RateLimit.Burst,
		MaxUpload: cfg.API.MaxUpload.Int64(),
	})

	ctx, stop := shutdown.SetupSignalHandler(cmd.Context())
	defer stop()
	return fn(ctx, cfg, client, st)
}
