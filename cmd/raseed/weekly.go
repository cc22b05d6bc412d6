package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/raseed/internal/chart"
	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/weekly"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func weeklyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Break a month into Sunday-to-Saturday rows",
		Long: `Split a month into weeks and show the spend of every weekday.

The month-local scheme keeps every day of the month in exactly one row. The
first-sunday scheme starts at the first Sunday and emits full weeks.`,
		RunE: runWeekly,
	}

	cmd.Flags().StringP("month", "m", "", "month to show as YYYY-MM (default: current month)")
	cmd.Flags().String("scheme", string(weekly.SchemeMonthLocal), "week scheme (month-local, first-sunday)")
	cmd.Flags().String("png", "", "also write the weekly totals as a PNG bar chart")

	_ = viper.BindPFlag("analytics.weekly_scheme", cmd.Flags().Lookup("scheme"))

	return cmd
}

func runWeekly(cmd *cobra.Command, _ []string) error {
	monthFlag, _ := cmd.Flags().GetString("month")
	pngPath, _ := cmd.Flags().GetString("png")

	scheme, err := weekly.ParseScheme(viper.GetString("analytics.weekly_scheme"))
	if err != nil {
		return err
	}

	set, err := loadReceipts(cmd.Context())
	if err != nil {
		return err
	}

	year, month, err := resolveMonth(monthFlag, "", now().In(set.analytics.Location))
	if err != nil {
		return err
	}

	weeks := weekly.Build(set.receipts, weekly.Params{
		Location: set.analytics.Location,
		Scheme:   scheme,
		Year:     year,
		Month:    month,
	})

	f := cli.NewFormatter(currency())
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s %d (%s)", month, year, scheme))); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, f.FormatWeekly(weeks)); err != nil {
		return err
	}

	if pngPath != "" {
		return writePNG(pngPath, func(w io.Writer) error {
			return chart.WeeklyPNG(w, fmt.Sprintf("%s %d", month, year), weeks)
		})
	}
	return nil
}
