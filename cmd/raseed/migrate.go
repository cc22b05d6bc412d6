package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/config"
	"github.com/Veraticus/raseed/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the receipt store schema to the latest version.

Other commands migrate automatically; use --status to inspect the store.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	srcCfg, err := config.LoadSourceConfig()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(srcCfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		return printMigrationStatus(cmd, store, srcCfg.UserID)
	}

	slog.Info("🗄️  Running database migrations...", "database", store.Path())
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("✅ Database migrations completed successfully!")
	return nil
}

func printMigrationStatus(cmd *cobra.Command, store *storage.SQLiteStorage, userID string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("Database:        %s", store.Path()),
		fmt.Sprintf("Current version: %d", current),
		fmt.Sprintf("Latest version:  %d", storage.ExpectedSchemaVersion),
	}

	if current < storage.ExpectedSchemaVersion {
		_, _ = fmt.Fprintln(out, cli.RenderBox("📊 Database Migration Status", strings.Join(lines, "\n")))
		_, _ = fmt.Fprintln(out, "Run 'raseed migrate' to apply pending migrations.")
		return nil
	}

	count, err := store.CountReceipts(ctx, userID)
	if err != nil {
		return err
	}
	lines = append(lines, fmt.Sprintf("Receipts (%s): %d", userID, count))

	batch, err := store.LatestImport(ctx, userID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		lines = append(lines, "Last import:     never")
	case err != nil:
		return err
	default:
		lines = append(lines, fmt.Sprintf("Last import:     %s from %s (%d receipts)",
			batch.ImportedAt.Local().Format("2006-01-02 15:04"), batch.Source, batch.ReceiptCount))
	}

	_, _ = fmt.Fprintln(out, cli.RenderBox("📊 Database Migration Status", strings.Join(lines, "\n")))
	return nil
}
