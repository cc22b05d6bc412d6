package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/listview"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/Veraticus/raseed/internal/weekly"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var weekdayHeaders = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Formatter renders analytics results for the terminal.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter creates a formatter. A non-empty currency is prefixed to
// totals, e.g. "SAR 1,250.00".
func NewFormatter(currency string) *Formatter {
	return &Formatter{
		printer:  message.NewPrinter(language.English),
		currency: strings.TrimSpace(currency),
	}
}

// Number formats an amount with grouping and two decimals.
func (f *Formatter) Number(d decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Amount formats an amount with the currency prefix, if any.
func (f *Formatter) Amount(d decimal.Decimal) string {
	if f.currency == "" {
		return f.Number(d)
	}
	return f.currency + " " + f.Number(d)
}

// FormatOverview renders the week and month summaries side by side.
func (f *Formatter) FormatOverview(o period.Overview) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		BoxStyle.Render(f.FormatSummary(o.Week)),
		" ",
		BoxStyle.Render(f.FormatSummary(o.Month)),
	)
}

// FormatStats renders the all-time totals and the most recent receipts.
func (f *Formatter) FormatStats(s period.Stats) string {
	lines := []string{
		TitleStyle.UnsetMargins().Render(ReceiptIcon + " All receipts"),
		"",
		BoldStyle.Render("Total spend: ") + f.Amount(s.TotalSpend),
		BoldStyle.Render("Receipts: ") + fmt.Sprintf("%d (%d this month)", s.ReceiptCount, s.ThisMonth),
	}
	if len(s.Recent) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", TableHeaderStyle.Render("Recent activity"))
	for _, r := range s.Recent {
		date, _ := r.LocalDate(nil)
		lines = append(lines, fmt.Sprintf("%s  %-24s %12s",
			SubtleStyle.Render(date), truncate(r.Merchant, 24), f.Number(r.TotalAmount)))
	}
	return strings.Join(lines, "\n")
}

// FormatSummary renders a single period summary with its category breakdown.
func (f *Formatter) FormatSummary(s period.Summary) string {
	title := TitleStyle.UnsetMargins().Render(fmt.Sprintf("%s Last %d days", ChartIcon, int(s.Window)))
	span := SubtleStyle.Render(fmt.Sprintf("%s to %s",
		s.CurrentStart.Format("Jan 2"), s.CurrentEnd.Format("Jan 2, 2006")))

	change := TrendStyle(s.Trend).Render(TrendArrow(s.Trend) + " " + s.Change)
	lines := []string{
		title,
		span,
		"",
		BoldStyle.Render("Total: ") + f.Amount(s.Total),
		change + SubtleStyle.Render(" vs previous "+f.Amount(s.PreviousTotal)),
		SubtleStyle.Render(fmt.Sprintf("%d receipts", s.ReceiptCount)),
	}

	if len(s.Categories) == 0 {
		lines = append(lines, "", SubtleStyle.Render("No spending in this period"))
		return strings.Join(lines, "\n")
	}

	const nameWidth = 16
	const amountWidth = 12
	header := TableHeaderStyle.Render(fmt.Sprintf("%-*s %*s %5s", nameWidth, "Category", amountWidth, "Amount", "Share"))
	lines = append(lines, "", header)
	for _, c := range s.Categories {
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(c.ColorToken)).
			Render(fmt.Sprintf("%-*s", nameWidth, truncate(c.Name, nameWidth)))
		lines = append(lines, fmt.Sprintf("%s %*s %4d%% %s",
			name,
			amountWidth, f.Number(c.Amount),
			c.PercentOfTotal,
			ShareBar(c.PercentOfTotal, 10)))
	}
	return strings.Join(lines, "\n")
}

// ShareBar renders a percentage as a fixed-width bar.
func ShareBar(percent, width int) string {
	filled := min(max(percent*width/100, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatHeatmap renders the month grid. selected is an ISO date to highlight
// or "".
func (f *Formatter) FormatHeatmap(cells []*heatmap.Cell, year int, month time.Month, selected string) string {
	title := TitleStyle.UnsetMargins().Render(fmt.Sprintf("%s %s %d", ChartIcon, month, year))

	lines := []string{title, "", SubtleStyle.Render(strings.Join(weekdayHeaders, " "))}

	row := make([]string, 0, 7)
	for i, cell := range cells {
		var text string
		switch {
		case cell == nil:
			text = "  "
		case cell.ISODate == selected:
			text = SelectedStyle.Inherit(BucketStyle(cell.Bucket)).Render(fmt.Sprintf("%2d", cell.Day))
		default:
			text = BucketStyle(cell.Bucket).Render(fmt.Sprintf("%2d", cell.Day))
		}
		row = append(row, text)
		if len(row) == 7 || i == len(cells)-1 {
			lines = append(lines, strings.Join(row, " "))
			row = row[:0]
		}
	}

	lines = append(lines, "", f.heatmapLegend(), "",
		BoldStyle.Render("Month total: ")+f.Amount(heatmap.MonthTotal(cells)))

	if selected != "" {
		for _, cell := range cells {
			if cell != nil && cell.ISODate == selected {
				lines = append(lines, SubtleStyle.Render(fmt.Sprintf("%s: %s across %d receipts",
					cell.ISODate, f.Amount(cell.Amount), cell.ReceiptCount)))
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) heatmapLegend() string {
	buckets := []heatmap.Bucket{
		heatmap.BucketEmpty,
		heatmap.BucketLow,
		heatmap.BucketMedium,
		heatmap.BucketHigh,
		heatmap.BucketVeryHigh,
	}
	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		parts = append(parts, BucketStyle(b).Render("■")+" "+string(b))
	}
	return strings.Join(parts, "  ")
}

// FormatWeekly renders one row per week with Sunday..Saturday columns.
func (f *Formatter) FormatWeekly(weeks []weekly.Week) string {
	const labelWidth = 14
	const cellWidth = 9

	header := fmt.Sprintf("%-*s", labelWidth, "Week")
	for _, d := range weekdayHeaders {
		header += fmt.Sprintf(" %*s", cellWidth, d)
	}
	header += fmt.Sprintf(" %*s", cellWidth+2, "Total")

	lines := []string{TableHeaderStyle.Render(header)}
	for _, w := range weeks {
		line := fmt.Sprintf("%-*s", labelWidth, w.Label())
		for _, amount := range w.Days {
			cell := "-"
			if !amount.IsZero() {
				cell = f.Number(amount)
			}
			line += fmt.Sprintf(" %*s", cellWidth, cell)
		}
		line += " " + BoldStyle.Render(fmt.Sprintf("%*s", cellWidth+2, f.Number(w.Days.Total())))
		lines = append(lines, line)
	}
	lines = append(lines, "", BoldStyle.Render("Month total: ")+f.Amount(weekly.Total(weeks)))
	return strings.Join(lines, "\n")
}

// FormatReceipts renders the filtered list. cursor is the highlighted row
// index or -1.
func (f *Formatter) FormatReceipts(view listview.View, sel listview.Selection, cursor int) string {
	const (
		dateWidth     = 10
		merchantWidth = 24
		categoryWidth = 14
		amountWidth   = 12
	)

	if view.Count == 0 {
		return SubtleStyle.Render("No receipts match the current filters")
	}

	header := fmt.Sprintf("    %-*s %-*s %-*s %*s",
		dateWidth, "Date",
		merchantWidth, "Merchant",
		categoryWidth, "Category",
		amountWidth, "Amount")
	lines := []string{TableHeaderStyle.Render(header)}

	for i, r := range view.Items {
		date, ok := r.LocalDate(nil)
		if !ok {
			date = "undated"
		}

		marker := "  "
		if i == cursor {
			marker = "> "
		}
		check := "  "
		if sel.Selecting() {
			check = "○ "
			if sel.IsSelected(r.ID) {
				check = "● "
			}
		}

		line := fmt.Sprintf("%s%s%-*s %-*s %-*s %*s",
			marker, check,
			dateWidth, date,
			merchantWidth, truncate(r.Merchant, merchantWidth),
			categoryWidth, truncate(r.CategoryOrOther(), categoryWidth),
			amountWidth, f.Number(r.TotalAmount))
		if r.Overspent {
			line += " " + WarningStyle.Render("over")
		}
		if i == cursor {
			line = SelectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	footer := fmt.Sprintf("%d receipts", view.Count)
	if sel.Selecting() {
		footer += fmt.Sprintf(", %d selected", sel.Len())
	}
	lines = append(lines, "", SubtleStyle.Render(footer))
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
