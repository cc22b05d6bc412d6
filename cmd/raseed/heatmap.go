package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/raseed/internal/chart"
	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/spf13/cobra"
)

func heatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show a month of daily spending as a calendar",
		Long: `Lay out one month as a Sunday-first calendar grid with each day colored
by how much was spent. Thresholds come from analytics.heatmap.*.`,
		RunE: runHeatmap,
	}

	cmd.Flags().StringP("month", "m", "", "month to show as YYYY-MM (default: current month)")
	cmd.Flags().StringP("date", "d", "", "highlight a day (YYYY-MM-DD) and show its total")
	cmd.Flags().String("png", "", "also write the daily totals as a PNG chart")

	return cmd
}

func runHeatmap(cmd *cobra.Command, _ []string) error {
	monthFlag, _ := cmd.Flags().GetString("month")
	selected, _ := cmd.Flags().GetString("date")
	pngPath, _ := cmd.Flags().GetString("png")

	set, err := loadReceipts(cmd.Context())
	if err != nil {
		return err
	}

	year, month, err := resolveMonth(monthFlag, selected, now().In(set.analytics.Location))
	if err != nil {
		return err
	}

	cells := heatmap.Build(set.receipts, heatmap.Params{
		Location:   set.analytics.Location,
		Thresholds: set.analytics.Thresholds,
		Year:       year,
		Month:      month,
	})

	f := cli.NewFormatter(currency())
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), f.FormatHeatmap(cells, year, month, selected)); err != nil {
		return err
	}

	if pngPath != "" {
		return writePNG(pngPath, func(w io.Writer) error {
			return chart.DailyPNG(w, fmt.Sprintf("%s %d", month, year), cells)
		})
	}
	return nil
}

// resolveMonth picks the month from --month, else from --date, else today.
func resolveMonth(monthFlag, dateFlag string, today time.Time) (int, time.Month, error) {
	if monthFlag != "" {
		return heatmap.ParseMonth(monthFlag)
	}
	if dateFlag != "" {
		d, err := time.Parse(time.DateOnly, dateFlag)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD: %w", dateFlag, err)
		}
		return d.Year(), d.Month(), nil
	}
	return today.Year(), today.Month(), nil
}
