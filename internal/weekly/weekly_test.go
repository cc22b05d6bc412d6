package weekly

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild_Rows(t *testing.T) {
	tests := []struct {
		name   string
		month  time.Month
		scheme Scheme
		want   [][2]time.Time
	}{
		{
			name:   "month-local with leading partial row",
			month:  time.January,
			scheme: SchemeMonthLocal,
			want: [][2]time.Time{
				{day(time.January, 1), day(time.January, 4)},
				{day(time.January, 5), day(time.January, 11)},
				{day(time.January, 12), day(time.January, 18)},
				{day(time.January, 19), day(time.January, 25)},
				{day(time.January, 26), day(time.January, 31)},
			},
		},
		{
			name:   "first-sunday drops leading days and runs past month end",
			month:  time.January,
			scheme: SchemeFirstSunday,
			want: [][2]time.Time{
				{day(time.January, 5), day(time.January, 11)},
				{day(time.January, 12), day(time.January, 18)},
				{day(time.January, 19), day(time.January, 25)},
				{day(time.January, 26), day(time.February, 1)},
			},
		},
		{
			name:   "month starting on sunday",
			month:  time.June,
			scheme: SchemeMonthLocal,
			want: [][2]time.Time{
				{day(time.June, 1), day(time.June, 7)},
				{day(time.June, 8), day(time.June, 14)},
				{day(time.June, 15), day(time.June, 21)},
				{day(time.June, 22), day(time.June, 28)},
				{day(time.June, 29), day(time.June, 30)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weeks := Build(nil, Params{Year: 2025, Month: tt.month, Location: time.UTC, Scheme: tt.scheme})
			require.Len(t, weeks, len(tt.want))
			for i, w := range weeks {
				assert.Equal(t, tt.want[i][0], w.Start, "row %d start", i)
				assert.Equal(t, tt.want[i][1], w.End, "row %d end", i)
				assert.True(t, w.Days.Total().IsZero())
			}
		})
	}
}

func TestBuild_WeekdayIndexing(t *testing.T) {
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Sun", "", 2025, time.January, 5, "10").
		Add("Sat", "", 2025, time.January, 11, "20").
		Add("Sat again", "", 2025, time.January, 11, "2.5").
		Add("Wed", "", 2025, time.January, 1, "7").
		Build()

	weeks := Build(receipts, Params{Year: 2025, Month: time.January, Location: time.UTC})
	require.Len(t, weeks, 5)

	assert.True(t, decimal.NewFromInt(7).Equal(weeks[0].Days[time.Wednesday]))
	assert.True(t, decimal.NewFromInt(10).Equal(weeks[1].Days[time.Sunday]))
	assert.True(t, decimal.RequireFromString("22.5").Equal(weeks[1].Days[time.Saturday]))
	assert.True(t, weeks[2].Days.Total().IsZero())
}

func TestBuild_MonthLocalTotalMatchesMonth(t *testing.T) {
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("Before first sunday", "", 2025, time.January, 2, "11").
		Add("Middle", "", 2025, time.January, 15, "40.40").
		Add("Last day", "", 2025, time.January, 31, "9").
		Add("Next month", "", 2025, time.February, 1, "1000").
		Add("Previous month", "", 2024, time.December, 31, "1000").
		AddUndated("Undated", "", "1000").
		Build()

	params := Params{Year: 2025, Month: time.January, Location: time.UTC}
	weeks := Build(receipts, params)
	cells := heatmap.Build(receipts, heatmap.Params{Year: 2025, Month: time.January, Location: time.UTC})

	assert.True(t, decimal.RequireFromString("60.40").Equal(Total(weeks)), "total = %s", Total(weeks))
	assert.True(t, heatmap.MonthTotal(cells).Equal(Total(weeks)))

	// The literal first-sunday rows lose Jan 2 and pick up Feb 1.
	params.Scheme = SchemeFirstSunday
	legacy := Build(receipts, params)
	assert.True(t, decimal.RequireFromString("1049.40").Equal(Total(legacy)), "total = %s", Total(legacy))
}

func TestBuckets(t *testing.T) {
	receipts := testutil.NewReceiptBuilder(time.UTC).
		Add("A", "", 2025, time.June, 3, "5").
		Build()

	buckets := Buckets(Build(receipts, Params{Year: 2025, Month: time.June, Location: time.UTC}))
	require.Len(t, buckets, 5)
	assert.True(t, decimal.NewFromInt(5).Equal(buckets[0][time.Tuesday]))
}

func TestWeek_Label(t *testing.T) {
	assert.Equal(t, "Jan 5-11", Week{Start: day(time.January, 5), End: day(time.January, 11)}.Label())
	assert.Equal(t, "Jan 26-Feb 1", Week{Start: day(time.January, 26), End: day(time.February, 1)}.Label())
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeMonthLocal, s)

	s, err = ParseScheme("First-Sunday")
	require.NoError(t, err)
	assert.Equal(t, SchemeFirstSunday, s)

	_, err = ParseScheme("iso")
	assert.Error(t, err)
}

func TestBuild_SkippedMidnight(t *testing.T) {
	santiago, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skip("tz database unavailable")
	}

	b := testutil.NewReceiptBuilder(santiago)
	for d := 1; d <= 30; d++ {
		b.Add(fmt.Sprintf("day %d", d), "", 2024, time.September, d, "1")
	}
	receipts := b.Build()

	weeks := Build(receipts, Params{Year: 2024, Month: time.September, Location: santiago})
	require.Len(t, weeks, 5)

	sep := func(d int) time.Time { return time.Date(2024, time.September, d, 0, 0, 0, 0, time.UTC) }
	wantStarts := []time.Time{sep(1), sep(8), sep(15), sep(22), sep(29)}
	wantTotals := []int64{7, 7, 7, 7, 2}
	for i, w := range weeks {
		assert.Equal(t, wantStarts[i], w.Start, "row %d start", i)
		assert.True(t, decimal.NewFromInt(wantTotals[i]).Equal(w.Days.Total()), "row %d total = %s", i, w.Days.Total())
	}

	cells := heatmap.Build(receipts, heatmap.Params{Year: 2024, Month: time.September, Location: santiago})
	assert.True(t, decimal.NewFromInt(30).Equal(Total(weeks)), "total = %s", Total(weeks))
	assert.True(t, heatmap.MonthTotal(cells).Equal(Total(weeks)))
}
