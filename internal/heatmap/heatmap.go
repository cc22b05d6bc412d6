// Package heatmap lays out a month of daily spend as a 7-column calendar grid.
package heatmap

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/shopspring/decimal"
)

// ErrThresholdOrder is returned when thresholds are not strictly ascending.
var ErrThresholdOrder = errors.New("heatmap thresholds must be positive and strictly ascending")

// Bucket is the color intensity class of a day.
type Bucket string

// Bucket values, lowest to highest.
const (
	BucketEmpty    Bucket = "empty"
	BucketLow      Bucket = "low"
	BucketMedium   Bucket = "medium"
	BucketHigh     Bucket = "high"
	BucketVeryHigh Bucket = "very-high"
)

// Thresholds are the exclusive upper bounds of the low, medium and high
// buckets. Amounts at or above High are very-high.
type Thresholds struct {
	Low    decimal.Decimal
	Medium decimal.Decimal
	High   decimal.Decimal
}

// DefaultThresholds returns the currency-scale defaults 500/2000/5000.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Low:    decimal.NewFromInt(500),
		Medium: decimal.NewFromInt(2000),
		High:   decimal.NewFromInt(5000),
	}
}

// Validate checks 0 < Low < Medium < High.
func (t Thresholds) Validate() error {
	if !t.Low.IsPositive() || !t.Low.LessThan(t.Medium) || !t.Medium.LessThan(t.High) {
		return fmt.Errorf("%w: got %s/%s/%s", ErrThresholdOrder, t.Low, t.Medium, t.High)
	}
	return nil
}

// Classify returns the bucket for a day's summed amount.
func (t Thresholds) Classify(amount decimal.Decimal) Bucket {
	switch {
	case !amount.IsPositive():
		return BucketEmpty
	case amount.LessThan(t.Low):
		return BucketLow
	case amount.LessThan(t.Medium):
		return BucketMedium
	case amount.LessThan(t.High):
		return BucketHigh
	default:
		return BucketVeryHigh
	}
}

// Params selects the month to lay out.
type Params struct {
	Location   *time.Location
	Thresholds Thresholds
	Year       int
	Month      time.Month
}

// Cell is one day of the grid.
type Cell struct {
	Amount       decimal.Decimal
	ISODate      string
	Bucket       Bucket
	Day          int
	ReceiptCount int
	HasReceipts  bool
}

// Build returns the month grid: one nil placeholder per weekday before the
// 1st (Sunday first), then one cell per day of the month. Receipts are
// assigned to days by their calendar date in p.Location; undated receipts
// are ignored. Zero-value thresholds fall back to DefaultThresholds.
func Build(receipts []model.Receipt, p Params) []*Cell {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	thresholds := p.Thresholds
	if thresholds.Validate() != nil {
		thresholds = DefaultThresholds()
	}

	// Day keys are calendar dates; instants in loc can skip or repeat a
	// midnight around DST changes.
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	days := DaysIn(p.Year, p.Month)

	type daySum struct {
		amount decimal.Decimal
		count  int
	}
	sums := make(map[string]*daySum, days)
	for _, r := range receipts {
		key, ok := r.LocalDate(loc)
		if !ok {
			continue
		}
		s, exists := sums[key]
		if !exists {
			s = &daySum{amount: decimal.Zero}
			sums[key] = s
		}
		s.amount = s.amount.Add(r.TotalAmount)
		s.count++
	}

	cells := make([]*Cell, offset, offset+days)
	for day := 1; day <= days; day++ {
		key := first.AddDate(0, 0, day-1).Format(model.ISODateLayout)
		cell := &Cell{Day: day, ISODate: key, Amount: decimal.Zero}
		if s, ok := sums[key]; ok {
			cell.Amount = s.amount
			cell.ReceiptCount = s.count
			cell.HasReceipts = s.count > 0
		}
		cell.Bucket = thresholds.Classify(cell.Amount)
		cells = append(cells, cell)
	}
	return cells
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Offset returns the number of leading placeholders in a grid built by Build.
func Offset(cells []*Cell) int {
	for i, c := range cells {
		if c != nil {
			return i
		}
	}
	return len(cells)
}

// MonthTotal sums the amounts of all day cells.
func MonthTotal(cells []*Cell) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cells {
		if c != nil {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// ToggleDate returns the new date selection after clicking a day: clicking
// the selected date clears the selection, any other date replaces it.
func ToggleDate(selected, clicked string) string {
	if selected == clicked {
		return ""
	}
	return clicked
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}
