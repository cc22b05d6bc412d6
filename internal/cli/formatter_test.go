package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/listview"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/Veraticus/raseed/internal/testutil"
	"github.com/Veraticus/raseed/internal/weekly"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_Amount(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		amount   string
		want     string
	}{
		{name: "plain", amount: "4.5", want: "4.50"},
		{name: "grouped", amount: "1234.5", want: "1,234.50"},
		{name: "rounded", amount: "0.005", want: "0.01"},
		{name: "currency", currency: "SAR", amount: "12", want: "SAR 12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(tt.currency)
			assert.Equal(t, tt.want, f.Amount(testutil.Amount(tt.amount)))
		})
	}
}

func TestShareBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ShareBar(50, 10))
	assert.Equal(t, "██████████", ShareBar(150, 10))
	assert.Equal(t, "░░░░░░░░░░", ShareBar(-5, 10))
	assert.Equal(t, "░░░░", ShareBar(0, 4))
}

func TestFormatSummary(t *testing.T) {
	now := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Blue Bottle", "coffee", 2025, time.March, 9, "15").
		Add("Safeway", "groceries", 2025, time.March, 8, "45").
		Add("Safeway", "groceries", 2025, time.March, 1, "40").
		Build()

	s := period.Aggregate(receipts, period.Params{Now: now, Window: period.WindowWeek})
	out := NewFormatter("").FormatSummary(s)

	assert.Contains(t, out, "Last 7 days")
	assert.Contains(t, out, "60.00")
	assert.Contains(t, out, "+50.0%")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Coffee")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "2 receipts")
}

func TestFormatSummary_Empty(t *testing.T) {
	s := period.Aggregate(nil, period.Params{
		Now:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Window: period.WindowMonth,
	})

	out := NewFormatter("").FormatSummary(s)

	assert.Contains(t, out, "Last 30 days")
	assert.Contains(t, out, "No spending in this period")
	assert.Contains(t, out, "+0.0%")
}

func TestFormatStats(t *testing.T) {
	now := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Blue Bottle", "coffee", 2025, time.March, 9, "15").
		Add("Safeway", "groceries", 2025, time.February, 8, "1200").
		AddUndated("Mystery", "", "5").
		Build()

	out := NewFormatter("SAR").FormatStats(period.DashboardStats(receipts, now, 3))

	assert.Contains(t, out, "SAR 1,220.00")
	assert.Contains(t, out, "3 (1 this month)")
	assert.Contains(t, out, "Recent activity")
	assert.Less(t, strings.Index(out, "Blue Bottle"), strings.Index(out, "Safeway"))
	assert.NotContains(t, out, "Mystery")

	empty := NewFormatter("").FormatStats(period.DashboardStats(nil, now, 3))
	assert.Contains(t, empty, "0 (0 this month)")
	assert.NotContains(t, empty, "Recent activity")
}

func TestFormatOverview(t *testing.T) {
	o := period.AggregateAll(nil, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 0)

	out := NewFormatter("").FormatOverview(o)

	assert.Contains(t, out, "Last 7 days")
	assert.Contains(t, out, "Last 30 days")
}

func TestFormatHeatmap(t *testing.T) {
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Cafe", "coffee", 2025, time.March, 4, "6.50").
		Add("Cafe", "coffee", 2025, time.March, 4, "10").
		Add("Market", "groceries", 2025, time.March, 20, "700").
		Build()
	cells := heatmap.Build(receipts, heatmap.Params{Location: time.UTC, Year: 2025, Month: time.March})

	out := NewFormatter("").FormatHeatmap(cells, 2025, time.March, "2025-03-04")

	assert.Contains(t, out, "March 2025")
	assert.Contains(t, out, "Su Mo Tu We Th Fr Sa")
	assert.Contains(t, out, "716.50")
	assert.Contains(t, out, "2025-03-04: 16.50 across 2 receipts")
	assert.Contains(t, out, "very-high")
}

func TestFormatHeatmap_NoSelection(t *testing.T) {
	cells := heatmap.Build(nil, heatmap.Params{Location: time.UTC, Year: 2025, Month: time.February})

	out := NewFormatter("").FormatHeatmap(cells, 2025, time.February, "")

	assert.Contains(t, out, "February 2025")
	assert.NotContains(t, out, "across")
}

func TestFormatWeekly(t *testing.T) {
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Cafe", "coffee", 2025, time.March, 3, "12").
		Add("Market", "groceries", 2025, time.March, 31, "1500").
		Build()
	weeks := weekly.Build(receipts, weekly.Params{
		Location: time.UTC,
		Scheme:   weekly.SchemeMonthLocal,
		Year:     2025,
		Month:    time.March,
	})

	out := NewFormatter("").FormatWeekly(weeks)

	assert.Contains(t, out, "Week")
	assert.Contains(t, out, "Mar 1-1")
	assert.Contains(t, out, "Mar 2-8")
	assert.Contains(t, out, "Mar 30-31")
	assert.Contains(t, out, "12.00")
	assert.Contains(t, out, "1,500.00")
	assert.Contains(t, out, "1,512.00")
}

func TestFormatReceipts(t *testing.T) {
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Blue Bottle", "coffee", 2025, time.March, 4, "4.5").
		Add("An Extremely Long Merchant Name That Overflows", "", 2025, time.March, 5, "82.10").
		AddUndated("Mystery", "shopping", "10").
		Build()
	receipts[1].Overspent = true
	view := listview.Apply(receipts, listview.FilterState{Sort: listview.SortDateAsc})

	t.Run("browsing", func(t *testing.T) {
		out := NewFormatter("").FormatReceipts(view, listview.Selection{}, 0)

		assert.Contains(t, out, "Blue Bottle")
		assert.Contains(t, out, "An Extremely Long Mer...")
		assert.Contains(t, out, "undated")
		assert.Contains(t, out, "other")
		assert.Contains(t, out, "over")
		assert.Contains(t, out, "3 receipts")
		assert.NotContains(t, out, "selected")
		assert.NotContains(t, out, "●")
	})

	t.Run("selecting", func(t *testing.T) {
		sel := listview.Selection{}.Enter().Toggle("r1")

		out := NewFormatter("").FormatReceipts(view, sel, -1)

		assert.Equal(t, 1, strings.Count(out, "●"))
		assert.Equal(t, 2, strings.Count(out, "○"))
		assert.Contains(t, out, "1 selected")
	})

	t.Run("empty", func(t *testing.T) {
		out := NewFormatter("").FormatReceipts(listview.View{}, listview.Selection{}, 0)
		assert.Contains(t, out, "No receipts match")
	})
}
