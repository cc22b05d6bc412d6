// Package period compares spend in a window ending now against the window of
// equal length immediately before it, and breaks the current window down by
// category.
package period

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Window is a window length in days.
type Window int

// Standard dashboard windows.
const (
	WindowWeek  Window = 7
	WindowMonth Window = 30
)

// DefaultTopN is the number of categories kept in a breakdown.
const DefaultTopN = 6

// Trend is the direction of change between two adjacent windows.
type Trend string

// Trend values.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// noChange is reported whenever the previous window had no spend.
const noChange = "+0.0%"

var hundred = decimal.NewFromInt(100)

// ParseWindow accepts "week", "month" or a positive number of days.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "weekly":
		return WindowWeek, nil
	case "month", "monthly":
		return WindowMonth, nil
	}
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("invalid window %q: want week, month or a positive day count", s)
	}
	return Window(days), nil
}

func (w Window) String() string {
	switch w {
	case WindowWeek:
		return "week"
	case WindowMonth:
		return "month"
	default:
		return fmt.Sprintf("%d days", int(w))
	}
}

// Params selects the windows to aggregate.
type Params struct {
	Now    time.Time
	Window Window
	TopN   int
}

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Amount         decimal.Decimal
	Name           string
	Kind           model.CategoryKind
	ColorToken     string
	IconToken      string
	PercentOfTotal int
}

// Summary is the spend of the current window compared with the previous one.
type Summary struct {
	CurrentStart  time.Time
	CurrentEnd    time.Time
	PreviousStart time.Time
	Total         decimal.Decimal
	PreviousTotal decimal.Decimal
	Change        string
	Trend         Trend
	Categories    []CategoryShare
	ReceiptCount  int
	Window        Window
}

// Overview pairs the week and month summaries shown on the dashboard.
type Overview struct {
	Week  Summary
	Month Summary
}

// Bounds returns the current window [currentStart, now] and the start of the
// previous window [previousStart, currentStart). Windows are anchored to
// whole calendar days in now's location: the current window covers today and
// the window-1 days before it, so it starts at the first instant of that day
// rather than exactly window days before now. Receipts from earlier today
// thus count toward a one-day window.
func Bounds(now time.Time, window Window) (currentStart, previousStart time.Time) {
	if window <= 0 {
		window = WindowWeek
	}
	y, m, d := now.Date()
	first := d - (int(window) - 1)
	currentStart = model.StartOfDay(y, m, first, now.Location())
	previousStart = model.StartOfDay(y, m, first-int(window), now.Location())
	return currentStart, previousStart
}

// Aggregate computes the summary for p. Undated receipts are ignored.
func Aggregate(receipts []model.Receipt, p Params) Summary {
	if p.Window <= 0 {
		p.Window = WindowWeek
	}
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}

	currentStart, previousStart := Bounds(p.Now, p.Window)
	s := Summary{
		Window:        p.Window,
		CurrentStart:  currentStart,
		CurrentEnd:    p.Now,
		PreviousStart: previousStart,
		Total:         decimal.Zero,
		PreviousTotal: decimal.Zero,
		Categories:    []CategoryShare{},
	}

	current := make([]model.Receipt, 0, len(receipts))
	for _, r := range receipts {
		if r.Timestamp == nil {
			continue
		}
		ts := *r.Timestamp
		switch {
		case !ts.Before(currentStart) && !ts.After(p.Now):
			s.Total = s.Total.Add(r.TotalAmount)
			current = append(current, r)
		case !ts.Before(previousStart) && ts.Before(currentStart):
			s.PreviousTotal = s.PreviousTotal.Add(r.TotalAmount)
		}
	}

	s.ReceiptCount = len(current)
	s.Change, s.Trend = Change(s.Total, s.PreviousTotal)
	s.Categories = breakdown(current, s.Total, p.TopN)
	return s
}

// AggregateAll computes the week and month summaries for now, keeping topN
// categories in each.
func AggregateAll(receipts []model.Receipt, now time.Time, topN int) Overview {
	return Overview{
		Week:  Aggregate(receipts, Params{Now: now, Window: WindowWeek, TopN: topN}),
		Month: Aggregate(receipts, Params{Now: now, Window: WindowMonth, TopN: topN}),
	}
}

// Change formats the relative change from previous to current with an
// explicit sign and one decimal, and classifies its direction. A zero
// previous total is reported as "+0.0%" and stable.
func Change(current, previous decimal.Decimal) (string, Trend) {
	if previous.IsZero() {
		return noChange, TrendStable
	}

	percent := current.Sub(previous).Div(previous).Mul(hundred)

	trend := TrendStable
	switch percent.Sign() {
	case 1:
		trend = TrendUp
	case -1:
		trend = TrendDown
	}

	sign := "+"
	if percent.IsNegative() {
		sign = "-"
	}
	return sign + percent.Abs().StringFixed(1) + "%", trend
}

type group struct {
	key    string
	amount decimal.Decimal
}

func breakdown(current []model.Receipt, total decimal.Decimal, topN int) []CategoryShare {
	var (
		groups []*group
		byKey  = make(map[string]*group)
	)
	for _, r := range current {
		key := categoryKey(r.Category)
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, amount: decimal.Zero}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.amount = g.amount.Add(r.TotalAmount)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].amount.GreaterThan(groups[j].amount)
	})
	if len(groups) > topN {
		groups = groups[:topN]
	}

	// cases.Caser keeps state, so each call gets its own.
	caser := cases.Title(language.English)
	shares := make([]CategoryShare, 0, len(groups))
	for _, g := range groups {
		kind := model.ClassifyCategory(g.key)
		style := kind.Style()
		shares = append(shares, CategoryShare{
			Name:           caser.String(g.key),
			Kind:           kind,
			Amount:         g.amount,
			PercentOfTotal: percentOf(g.amount, total),
			ColorToken:     style.Color,
			IconToken:      style.Icon,
		})
	}
	return shares
}

func categoryKey(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return string(model.CategoryOther)
	}
	return key
}

func percentOf(amount, total decimal.Decimal) int {
	if !total.IsPositive() {
		return 0
	}
	return int(amount.Div(total).Mul(hundred).Round(0).IntPart())
}
