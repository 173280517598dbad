package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = LoadLocation("Not/AZone")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 9, d.Day())

	_, err = ParseDate("03/09/2025")
	assert.Error(t, err)
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	before := time.Date(2025, 3, 8, 23, 30, 0, 0, loc)
	after := time.Date(2025, 3, 10, 0, 30, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(before, after))
	assert.Equal(t, -2, DaysBetween(after, before))
}

func TestCalendarDayKeepsLocalDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 08:00 in Tokyo is still the previous day in UTC
	day := CalendarDay(time.Date(2024, 1, 10, 8, 0, 0, 0, loc))
	assert.Equal(t, "2024-01-10", FormatDate(day))
	assert.Equal(t, time.UTC, day.Location())
}
