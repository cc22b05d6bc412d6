package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/raseed/internal/chart"
	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compare spending with the previous period",
		Long: `Show all-time totals with the most recent receipts, then total spend for
the last week and the last 30 days, the change against the window before,
and the top categories.

With --window only that window is shown.`,
		RunE: runSummary,
	}

	cmd.Flags().StringP("window", "w", "", "window: week, month or a number of days (default: both)")
	cmd.Flags().String("png", "", "also write the category breakdown as a PNG pie chart")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	windowFlag, _ := cmd.Flags().GetString("window")
	pngPath, _ := cmd.Flags().GetString("png")

	set, err := loadReceipts(cmd.Context())
	if err != nil {
		return err
	}

	at := now().In(set.analytics.Location)
	f := cli.NewFormatter(currency())
	out := cmd.OutOrStdout()

	if windowFlag == "" {
		stats := period.DashboardStats(set.receipts, at, period.DefaultRecent)
		if _, err := fmt.Fprintln(out, cli.BoxStyle.Render(f.FormatStats(stats))); err != nil {
			return err
		}
		overview := period.AggregateAll(set.receipts, at, set.analytics.TopN)
		if _, err := fmt.Fprintln(out, f.FormatOverview(overview)); err != nil {
			return err
		}
		if pngPath != "" {
			return writePNG(pngPath, func(w io.Writer) error {
				return chart.CategoriesPNG(w, overview.Month)
			})
		}
		return nil
	}

	window, err := period.ParseWindow(windowFlag)
	if err != nil {
		return err
	}
	summary := period.Aggregate(set.receipts, period.Params{Now: at, Window: window, TopN: set.analytics.TopN})
	if _, err := fmt.Fprintln(out, cli.BoxStyle.Render(f.FormatSummary(summary))); err != nil {
		return err
	}

	if pngPath != "" {
		return writePNG(pngPath, func(w io.Writer) error {
			return chart.CategoriesPNG(w, summary)
		})
	}
	return nil
}
