package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/listview"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List receipts with filters and sorting",
		Long: `List receipts matching every given filter.

Search matches the merchant name case-insensitively. Category matches
exactly; "All" matches everything. Date is a YYYY-MM-DD local date.`,
		RunE: runList,
	}

	addFilterFlags(cmd)
	cmd.Flags().Bool("categories", false, "list the known categories instead of receipts")

	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "filter by merchant name")
	cmd.Flags().StringP("category", "c", listview.CategoryAll, "filter by category")
	cmd.Flags().StringP("date", "d", "", "filter by date (YYYY-MM-DD)")
	cmd.Flags().StringP("sort", "o", string(listview.DefaultSort), "sort order ("+sortNames()+")")
}

func sortNames() string {
	options := listview.SortOptions()
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

// filterFromFlags builds the list filter from the flags added by addFilterFlags.
func filterFromFlags(cmd *cobra.Command) (listview.FilterState, error) {
	search, _ := cmd.Flags().GetString("search")
	category, _ := cmd.Flags().GetString("category")
	date, _ := cmd.Flags().GetString("date")
	sortFlag, _ := cmd.Flags().GetString("sort")

	criteria, err := listview.ParseSortCriteria(sortFlag)
	if err != nil {
		return listview.FilterState{}, fmt.Errorf("%w (%s)", err, sortNames())
	}
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return listview.FilterState{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD: %w", date, err)
		}
	}

	return listview.FilterState{
		SearchText:   search,
		Category:     category,
		SelectedDate: date,
		Sort:         criteria,
	}, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	onlyCategories, _ := cmd.Flags().GetBool("categories")

	set, err := loadReceipts(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if onlyCategories {
		for _, c := range listview.Categories(set.receipts) {
			if _, err := fmt.Fprintln(out, c); err != nil {
				return err
			}
		}
		return nil
	}

	view := listview.Apply(set.receipts, filter)
	f := cli.NewFormatter(currency())
	_, err = fmt.Fprintln(out, f.FormatReceipts(view, listview.Selection{}, -1))
	return err
}
