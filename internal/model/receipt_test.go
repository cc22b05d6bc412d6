package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func santiago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skip("tz database unavailable")
	}
	return loc
}

func TestStartOfDay(t *testing.T) {
	start := StartOfDay(2025, time.March, 10, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), start)

	// Out-of-range days normalize.
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), StartOfDay(2025, time.March, 0, time.UTC))
}

func TestStartOfDay_SkippedMidnight(t *testing.T) {
	loc := santiago(t)

	// Clocks jumped from 00:00 to 01:00 on 2024-09-08.
	start := StartOfDay(2024, time.September, 8, loc)
	assert.Equal(t, 8, start.Day())
	assert.Equal(t, 1, start.Hour())
	assert.Equal(t, time.Date(2024, time.September, 8, 4, 0, 0, 0, time.UTC), start.UTC())

	prev := StartOfDay(2024, time.September, 7, loc)
	assert.Equal(t, 24*time.Hour, start.Sub(prev))

	assert.Equal(t, start, DayStart(time.Date(2024, time.September, 8, 15, 0, 0, 0, loc)))
}

func TestLocalDay(t *testing.T) {
	loc := santiago(t)

	ts := time.Date(2024, time.September, 8, 3, 30, 0, 0, time.UTC) // Sep 7 23:30 -04
	r := Receipt{Timestamp: &ts}

	day, ok := r.LocalDay(loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.September, 7, 0, 0, 0, 0, time.UTC), day)

	day, ok = r.LocalDay(nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.September, 8, 0, 0, 0, 0, time.UTC), day)

	_, ok = Receipt{}.LocalDay(loc)
	assert.False(t, ok)
}
