package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasteal/internal/app"
	"tasteal/internal/catalog"
)

var (
	seedFile    string
	ghostAuthor string
)

// migrateCmd applies pending migrations; opening the application is enough.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date.\n", a.Config.DatabasePath)
		return nil
	}),
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load ingredient types, ingredients and occasions from a TOML catalogue",
	Long: `Load ingredient types, ingredients and occasions from a TOML catalogue.

Entries are upserted by name, so the same file can be loaded repeatedly.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open catalogue: %w", err)
		}
		defer f.Close()

		stats, err := catalog.Seed(ctx, a.Catalog, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d ingredient types, %d ingredients and %d occasions.\n",
			stats.IngredientTypes, stats.Ingredients, stats.Occasions)
		return nil
	}),
}

var importGhostCmd = &cobra.Command{
	Use:   "import-ghost",
	Short: "Import every recipe post of the configured Ghost blog",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
		client, err := a.Ghost()
		if err != nil {
			return err
		}
		stats, err := a.Importer.IngestGhost(ctx, client, a.Clipper, ghostAuthor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d posts: %d imported, %d skipped, %d failed.\n",
			stats.Fetched, stats.Imported, stats.Skipped, stats.Failed)
		return nil
	}),
}

var clipCmd = &cobra.Command{
	Use:   "clip <url>",
	Short: "Extract a recipe draft from a web page and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		draft, err := a.Clipper.ClipURL(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(draft)
	}),
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.toml", "Catalogue file to load")
	importGhostCmd.Flags().StringVar(&ghostAuthor, "author", "", "Account uid that will own the imported recipes")
	_ = importGhostCmd.MarkFlagRequired("author")
}
