package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tasteal/internal/app"
	"tasteal/internal/cart"
	"tasteal/internal/planner"
)

var (
	tokenUID    string
	remindDate  string
	groceryUID  string
	groceryOut  string
	cleanupDays int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for an account",
	Args:  cobra.NoArgs,
	RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		tok, err := a.Issuer.Issue(tokenUID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	}),
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send the Telegram plan reminder for a day",
	Long: `Send every account with a linked Telegram chat the recipes it planned
for a day. Meant to run from cron once a morning.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		date := planner.Day(time.Now())
		if remindDate != "" {
			d, err := planner.ParseDateKey(remindDate)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			date = d
		}

		_, reminder, err := a.Telegram()
		if err != nil {
			return err
		}
		if reminder == nil {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
		}
		stats, err := reminder.Send(ctx, date)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d accounts, %d sent, %d skipped, %d failed.\n",
			planner.DateKey(date), stats.Accounts, stats.Sent, stats.Skipped, stats.Failed)
		return nil
	}),
}

var exportGroceryCmd = &cobra.Command{
	Use:   "export-grocery",
	Short: "Write an account's grocery list to an .xlsx file",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		rows, err := a.Carts.GroceryList(ctx, groceryUID)
		if err != nil {
			return err
		}
		f, err := os.Create(groceryOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", groceryOut, err)
		}
		if err := cart.ExportXLSX(rows, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s.\n", len(rows), groceryOut)
		return nil
	}),
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old LLM execution metrics",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		affected, err := a.Metrics.Cleanup(ctx, cleanupDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
		return nil
	}),
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUID, "uid", "", "Account uid")
	_ = tokenCmd.MarkFlagRequired("uid")

	remindCmd.Flags().StringVar(&remindDate, "date", "", "Day to remind about, YYYY-MM-DD (default today, UTC)")

	exportGroceryCmd.Flags().StringVar(&groceryUID, "uid", "", "Account uid")
	exportGroceryCmd.Flags().StringVarP(&groceryOut, "out", "o", "grocery.xlsx", "Output file")
	_ = exportGroceryCmd.MarkFlagRequired("uid")

	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Keep records for the last N days")
}
