package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ISODateLayout is the layout of the local calendar-date keys used by the
// heatmap, the weekly buckets and the date filter.
const ISODateLayout = "2006-01-02"

// UnknownMerchant is the merchant name used when a payload carries no store.
const UnknownMerchant = "Unknown"

// RawReceipt is a receipt payload as returned by the backend. Every field is
// optional and loosely typed; the normalizer is responsible for coercion.
type RawReceipt map[string]any

// Receipt is the canonical, type-safe receipt record every derived view is
// computed from.
type Receipt struct {
	Timestamp   *time.Time // nil when the payload had no parseable timestamp
	TotalAmount decimal.Decimal
	ID          string
	Merchant    string
	Category    string // raw category text; "" is treated as "other" downstream
	Location    string
	Summary     string
	Color       string // display color picked from the palette by Index
	Items       []Item
	Index       int // position in the input list
	Overspent   bool
}

// Item is a single line on a receipt.
type Item struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Name      string
	Category  string
}

// HasTimestamp reports whether the receipt can take part in date-bucketed views.
func (r Receipt) HasTimestamp() bool {
	return r.Timestamp != nil
}

// LocalDate returns the receipt's calendar date in loc as YYYY-MM-DD.
// A nil loc uses the timestamp's own location. The second return value is
// false for undated receipts.
func (r Receipt) LocalDate(loc *time.Location) (string, bool) {
	if r.Timestamp == nil {
		return "", false
	}
	t := *r.Timestamp
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ISODateLayout), true
}

// CategoryOrOther returns the receipt category, or "other" when it is blank.
func (r Receipt) CategoryOrOther() string {
	if r.Category == "" {
		return string(CategoryOther)
	}
	return r.Category
}

// DayStart returns the first instant of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return StartOfDay(y, m, d, t.Location())
}

// StartOfDay returns the first instant of the given calendar day in loc.
// Out-of-range days normalize like time.Date. In zones where a DST change
// skips midnight the day starts when the clocks jump, not at 23:00 the
// evening before.
func StartOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	want := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	for CivilDate(start).Before(want) {
		start = start.Add(15 * time.Minute)
	}
	return start
}

// CivilDate returns t's calendar date in t's location as a UTC midnight.
// Such values are safe for day arithmetic with AddDate and for comparisons
// across zones.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalDay returns the receipt's calendar date in loc as a UTC midnight.
// A nil loc uses the timestamp's own location.
func (r Receipt) LocalDay(loc *time.Location) (time.Time, bool) {
	if r.Timestamp == nil {
		return time.Time{}, false
	}
	t := *r.Timestamp
	if loc != nil {
		t = t.In(loc)
	}
	return CivilDate(t), true
}
