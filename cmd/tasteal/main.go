package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tasteal/internal/app"
	"tasteal/internal/config"
	"tasteal/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "tasteal",
	Short: "Operator tools for the Tasteal backend",
	Long: `Operator tools for the Tasteal backend.

Every command reads the same configuration as the API server:
TASTEAL_CONFIG names an optional YAML file and environment variables
such as TASTEAL_DB_PATH and TASTEAL_JWT_SECRET override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// appRunFunc is the body of a command that needs the wired application.
type appRunFunc func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error

// withApp loads the configuration, opens the application for the duration
// of the command and closes it afterwards.
func withApp(run appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, logger.Named("cli"))
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("failed to close application", zap.Error(err))
			}
		}()
		return run(ctx, cmd, a, args)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importGhostCmd)
	rootCmd.AddCommand(clipCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(exportGroceryCmd)
	rootCmd.AddCommand(metricsCleanupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
