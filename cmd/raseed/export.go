package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/config"
	"github.com/Veraticus/raseed/internal/export"
	"github.com/Veraticus/raseed/internal/listview"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/Veraticus/raseed/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const formatSheets = "sheets"

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered receipts",
		Long: `Export every receipt matching the filters.

File formats (json, csv, xlsx) write a new timestamped file into --out.
The sheets format appends rows to the configured Google Sheets spreadsheet;
run 'raseed auth sheets' first.`,
		RunE: runExport,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("format", "f", string(export.FormatCSV), "export format (json, csv, xlsx, sheets)")
	cmd.Flags().String("out", ".", "directory for exported files")

	_ = viper.BindPFlag("export.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("export.dir", cmd.Flags().Lookup("out"))

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Export")
	ctx, stop := handler.HandleInterrupts(cmd.Context(), "Run the same export again when you are ready.")
	defer stop()

	exporter, describe, err := newExporter(ctx, viper.GetString("export.format"), viper.GetString("export.dir"))
	if err != nil {
		return err
	}

	set, err := loadReceipts(ctx)
	if err != nil {
		return err
	}

	view := listview.Apply(set.receipts, filter)
	if view.Count == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No receipts match the current filters"))
		return nil
	}

	sel := listview.Selection{}.Enter().ToggleAll(view.Items)
	bulk := listview.NewBulkAction(exporter, slog.Default())
	if _, err := bulk.Run(ctx, sel, view.Items); err != nil {
		if handler.WasInterrupted() && errors.Is(err, context.Canceled) {
			return nil
		}
		common.LogError(err, "Export failed", common.Fields{"format": viper.GetString("export.format"), "receipts": view.Count})
		return common.NewUserError(fmt.Sprintf("Export of %d receipts failed; nothing was written", view.Count), err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Exported %d receipts to %s", view.Count, describe())))
	return nil
}

// newExporter returns the exporter for format and a description of where
// the last export went.
func newExporter(ctx context.Context, format, outDir string) (service.Exporter, func() string, error) {
	if strings.EqualFold(strings.TrimSpace(format), formatSheets) {
		cfg, err := config.LoadSheetsConfig()
		if err != nil {
			return nil, nil, err
		}
		exporter, err := sheets.NewExporter(ctx, *cfg, slog.Default())
		if err != nil {
			return nil, nil, err
		}
		return exporter, func() string { return "Google Sheets" }, nil
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, nil, err
	}
	exporter, err := export.NewFileExporter(config.ExpandPath(outDir), f, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return exporter, exporter.LastPath, nil
}
