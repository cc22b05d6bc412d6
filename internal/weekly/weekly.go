// Package weekly splits a calendar month into week rows and sums spend per
// weekday within each row, one row per chart series.
package weekly

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/shopspring/decimal"
)

// Bucket holds one week's spend indexed by weekday, Sunday first.
type Bucket [7]decimal.Decimal

// Total sums the bucket.
func (b Bucket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range b {
		total = total.Add(d)
	}
	return total
}

// Scheme selects how a month is divided into rows.
type Scheme string

const (
	// SchemeMonthLocal adds a leading partial row for the days before the
	// first Sunday and clips the last row at the end of the month, so every
	// in-month day belongs to exactly one row.
	SchemeMonthLocal Scheme = "month-local"
	// SchemeFirstSunday starts at the first Sunday on or after the 1st and
	// emits full seven-day rows. Days before that Sunday are not counted and
	// the last row may run into the next month.
	SchemeFirstSunday Scheme = "first-sunday"
)

// ParseScheme parses a scheme name; "" selects SchemeMonthLocal.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeMonthLocal:
		return SchemeMonthLocal, nil
	case SchemeFirstSunday:
		return SchemeFirstSunday, nil
	default:
		return "", fmt.Errorf("unknown weekly scheme %q", s)
	}
}

// Params selects the month to split.
type Params struct {
	Location *time.Location
	Scheme   Scheme
	Year     int
	Month    time.Month
}

// Week is one row: its first and last calendar day, each held as a UTC
// midnight, and the spend of each weekday in between.
type Week struct {
	Start time.Time
	End   time.Time
	Days  Bucket
}

// Contains reports whether day, a calendar date as returned by
// model.CivilDate, lies in the row.
func (w Week) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// Label is a short human name for the row, e.g. "Jan 5-11".
func (w Week) Label() string {
	if w.Start.Month() == w.End.Month() {
		return fmt.Sprintf("%s %d-%d", w.Start.Format("Jan"), w.Start.Day(), w.End.Day())
	}
	return fmt.Sprintf("%s-%s", w.Start.Format("Jan 2"), w.End.Format("Jan 2"))
}

// Build splits the month into rows and sums receipts into them by their
// calendar date in p.Location. Undated receipts are ignored.
func Build(receipts []model.Receipt, p Params) []Week {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	weeks := rows(p.Year, p.Month, p.Scheme)
	for _, r := range receipts {
		day, ok := r.LocalDay(loc)
		if !ok {
			continue
		}
		for i := range weeks {
			if weeks[i].Contains(day) {
				wd := day.Weekday()
				weeks[i].Days[wd] = weeks[i].Days[wd].Add(r.TotalAmount)
				break
			}
		}
	}
	return weeks
}

func rows(year int, month time.Month, scheme Scheme) []Week {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	firstSunday := first.AddDate(0, 0, (7-int(first.Weekday()))%7)

	var weeks []Week
	if scheme != SchemeFirstSunday && !firstSunday.Equal(first) {
		weeks = append(weeks, newWeek(first, firstSunday.AddDate(0, 0, -1)))
	}
	for start := firstSunday; start.Month() == month; start = start.AddDate(0, 0, 7) {
		end := start.AddDate(0, 0, 6)
		if scheme != SchemeFirstSunday && end.After(last) {
			end = last
		}
		weeks = append(weeks, newWeek(start, end))
	}
	return weeks
}

func newWeek(start, end time.Time) Week {
	w := Week{Start: start, End: end}
	for i := range w.Days {
		w.Days[i] = decimal.Zero
	}
	return w
}

// Buckets returns the weekday arrays of weeks in order.
func Buckets(weeks []Week) []Bucket {
	out := make([]Bucket, len(weeks))
	for i, w := range weeks {
		out[i] = w.Days
	}
	return out
}

// Total sums every weekday of every week.
func Total(weeks []Week) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weeks {
		total = total.Add(w.Days.Total())
	}
	return total
}
