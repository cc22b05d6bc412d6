package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/raseed/internal/tui"
	"github.com/Veraticus/raseed/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse, filter and export receipts interactively",
		Long: `Open the interactive receipt browser.

Press / to search, c to cycle categories, o to change the sort order and
[ ] to step through days. Press v to start selecting, space to toggle a
receipt, ctrl+a to select everything shown and e to export the selection.`,
		RunE: runBrowse,
	}

	cmd.Flags().StringP("format", "f", "csv", "export format for the selection (json, csv, xlsx, sheets)")
	cmd.Flags().String("out", ".", "directory for exported files")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")

	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")

	set, err := loadReceipts(ctx)
	if err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithReceipts(set.receipts),
		tui.WithTheme(themes.ByName(viper.GetString("tui.theme"))),
		tui.WithCurrency(currency()),
		tui.WithLogger(slog.Default()),
	}

	exporter, _, err := newExporter(ctx, format, outDir)
	if err != nil {
		// Browsing still works; the export key reports the missing target.
		slog.Warn("Export disabled", "format", format, "error", err)
	} else {
		opts = append(opts, tui.WithExporter(exporter))
	}

	if err := tui.Run(ctx, opts...); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
