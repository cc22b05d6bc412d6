package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/Veraticus/raseed/internal/testutil"
	"github.com/Veraticus/raseed/internal/weekly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func marchReceipts() *testutil.ReceiptBuilder {
	return testutil.NewReceiptBuilder(time.UTC).
		Add("Cafe", "coffee", 2025, time.March, 4, "6.50").
		Add("Market", "groceries", 2025, time.March, 12, "82.10").
		Add("Fuel", "gas", 2025, time.March, 20, "40")
}

func TestWeeklyPNG(t *testing.T) {
	tests := []struct {
		name     string
		receipts *testutil.ReceiptBuilder
	}{
		{name: "with spend", receipts: marchReceipts()},
		{name: "all zero", receipts: testutil.NewReceiptBuilder(time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weeks := weekly.Build(tt.receipts.Build(), weekly.Params{
				Location: time.UTC,
				Year:     2025,
				Month:    time.March,
			})

			var buf bytes.Buffer
			require.NoError(t, WeeklyPNG(&buf, "March 2025", weeks))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
		})
	}
}

func TestWeeklyPNG_NoWeeks(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WeeklyPNG(&buf, "", nil), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestDailyPNG(t *testing.T) {
	cells := heatmap.Build(marchReceipts().Build(), heatmap.Params{Location: time.UTC, Year: 2025, Month: time.March})

	var buf bytes.Buffer
	require.NoError(t, DailyPNG(&buf, "March 2025", cells))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))

	assert.ErrorIs(t, DailyPNG(&buf, "", nil), ErrNoData)
}

func TestCategoriesPNG(t *testing.T) {
	now := time.Date(2025, time.March, 25, 12, 0, 0, 0, time.UTC)
	s := period.Aggregate(marchReceipts().Build(), period.Params{Now: now, Window: period.WindowMonth})

	var buf bytes.Buffer
	require.NoError(t, CategoriesPNG(&buf, s))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))

	empty := period.Aggregate(nil, period.Params{Now: now, Window: period.WindowWeek})
	assert.ErrorIs(t, CategoriesPNG(&bytes.Buffer{}, empty), ErrNoData)
}
