package trends

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/models"
)

// 2024-01-10 is a Wednesday
var today = time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)

func entry(date string, points int) models.ActivityLogEntry {
	return models.ActivityLogEntry{ID: date, Date: date, Category: "Personal", Description: "x", Points: points}
}

func daysBefore(n int) string {
	return today.AddDate(0, 0, -n).Format("2006-01-02")
}

func consecutive(start string, n int) []models.ActivityLogEntry {
	d, _ := time.Parse("2006-01-02", start)
	var out []models.ActivityLogEntry
	for i := range n {
		out = append(out, entry(d.AddDate(0, 0, i).Format("2006-01-02"), i+1))
	}
	return out
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name string
		days []int
		want int
	}{
		{"three days", []int{0, 1, 2}, 3},
		{"gap breaks streak", []int{0, 1, 3}, 2},
		{"no entry today", []int{1, 2, 3}, 0},
		{"empty", nil, 0},
		{"duplicates on one day", []int{0, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []models.ActivityLogEntry
			for _, d := range tt.days {
				entries = append(entries, entry(daysBefore(d), 5))
			}
			assert.Equal(t, tt.want, New(entries, today).CurrentStreak())
		})
	}
}

func TestLongestStreak(t *testing.T) {
	entries := []models.ActivityLogEntry{
		entry("2024-01-01", 1), entry("2024-01-02", 1),
		entry("2024-01-04", 1), entry("2024-01-05", 1), entry("2024-01-06", 1), entry("2024-01-06", 3),
		entry("2024-01-09", 1),
	}
	assert.Equal(t, 3, New(entries, today).LongestStreak())
	assert.Zero(t, New(nil, today).LongestStreak())
}

func TestWeeklyDelta(t *testing.T) {
	entries := []models.ActivityLogEntry{
		entry(daysBefore(0), 10),
		entry(daysBefore(7), 20), // boundary belongs to this week
		entry(daysBefore(8), 5),
		entry(daysBefore(14), 15), // boundary belongs to previous week
		entry(daysBefore(15), 100),
	}
	w := New(entries, today).WeeklyDelta()
	assert.Equal(t, WeekComparison{ThisWeek: 30, PreviousWeek: 20, Delta: 10, Percent: 50}, w)

	w = New([]models.ActivityLogEntry{entry(daysBefore(1), 7)}, today).WeeklyDelta()
	assert.Equal(t, 0.0, w.Percent)
	assert.Equal(t, 7, w.Delta)

	w = New([]models.ActivityLogEntry{entry(daysBefore(1), 1), entry(daysBefore(9), 3)}, today).WeeklyDelta()
	assert.Equal(t, -66.7, w.Percent)
}

func TestDayOfWeek(t *testing.T) {
	entries := []models.ActivityLogEntry{
		entry("2024-01-08", 5),  // Monday
		entry("2024-01-10", 3),  // Wednesday
		entry("2024-01-10", 2),  // Wednesday
		entry("2024-01-14", 10), // Sunday
	}
	e := New(entries, today)
	rows := e.DayOfWeek()
	require.Len(t, rows, 7)
	assert.Equal(t, time.Monday, rows[0].Weekday)
	assert.Equal(t, time.Sunday, rows[6].Weekday)
	assert.Equal(t, WeekdayTotal{Weekday: time.Wednesday, Sum: 5, Count: 2}, rows[2])

	best, ok := e.MostProductiveDay()
	require.True(t, ok)
	assert.Equal(t, time.Sunday, best.Weekday)

	// Monday and Wednesday tie at 5; Monday comes first
	best, ok = New(entries[:3], today).MostProductiveDay()
	require.True(t, ok)
	assert.Equal(t, time.Monday, best.Weekday)

	_, ok = New(nil, today).MostProductiveDay()
	assert.False(t, ok)
}

func TestRollingAverageBoundaries(t *testing.T) {
	short := New(consecutive("2024-01-01", 5), today).RollingAverage(7)
	require.Len(t, short, 5)
	for i, p := range short {
		assert.Nil(t, p.Average, "index %d", i)
	}

	long := New(consecutive("2024-01-01", 10), today).RollingAverage(7)
	require.Len(t, long, 10)
	for i := range 6 {
		assert.Nil(t, long[i].Average, "index %d", i)
	}
	for i := 6; i < 10; i++ {
		require.NotNil(t, long[i].Average, "index %d", i)
	}
	// points are 1..7 at index 6, 4..10 at index 9
	assert.InDelta(t, 4.0, *long[6].Average, 1e-9)
	assert.InDelta(t, 7.0, *long[9].Average, 1e-9)
}

func TestRollingAverageFillsGaps(t *testing.T) {
	entries := []models.ActivityLogEntry{entry("2024-01-01", 7), entry("2024-01-07", 7)}
	series := New(entries, today).RollingAverage(7)
	require.Len(t, series, 7)
	assert.Equal(t, 0, series[3].Points)
	require.NotNil(t, series[6].Average)
	assert.InDelta(t, 2.0, *series[6].Average, 1e-9)
}

func TestActivityRate(t *testing.T) {
	_, ok := New([]models.ActivityLogEntry{entry("2024-01-01", 1), entry("2024-01-01", 2)}, today).ActivityRate()
	assert.False(t, ok)

	rate, ok := New([]models.ActivityLogEntry{entry("2024-01-01", 1), entry("2024-01-02", 1), entry("2024-01-04", 1)}, today).ActivityRate()
	require.True(t, ok)
	assert.Equal(t, 75.0, rate)
}

func TestCategoryStats(t *testing.T) {
	entries := []models.ActivityLogEntry{
		{Date: "2024-01-01", Category: "Professional", Points: 10},
		{Date: "2024-01-02", Category: "Professional", Points: 5},
		{Date: "2024-01-02", Category: "Professional", Points: 5},
		{Date: "2024-01-03", Category: "Personal", Points: 3},
	}
	stats := New(entries, today).CategoryStats()
	require.Len(t, stats, 2)
	assert.Equal(t, CategoryStat{Category: "Professional", Total: 20, Mean: 6.67, Count: 3}, stats[0])
	assert.Equal(t, CategoryStat{Category: "Personal", Total: 3, Mean: 3, Count: 1}, stats[1])
}

func withEnergy(date, category string, energy int) models.ActivityLogEntry {
	e := entry(date, 1)
	e.Category = category
	e.EnergyLevel = models.Energy(energy)
	return e
}

func TestEnergy(t *testing.T) {
	entries := []models.ActivityLogEntry{
		withEnergy("2024-01-01", "Personal", 2),
		withEnergy("2024-01-01", "Professional", 3),
		entry("2024-01-02", 4),
		withEnergy("2024-01-03", "Personal", 5),
	}
	e := New(entries, today)

	daily := e.DailyEnergy()
	require.Len(t, daily, 2)
	assert.Equal(t, 2.5, daily[0].Mean)
	assert.Equal(t, 5.0, daily[1].Mean)

	assert.Equal(t, []CategoryEnergy{
		{Category: "Personal", Mean: 3.5},
		{Category: "Professional", Mean: 3},
	}, e.EnergyByCategory())
}

func TestRecentEnergy(t *testing.T) {
	tests := []struct {
		levels []int
		want   EnergyAdvice
	}{
		{[]int{1, 2}, EnergyNoData},
		{[]int{1, 2, 3}, EnergyLow},
		{[]int{2, 3, 4}, EnergySteady},
		{[]int{4, 4, 5}, EnergyHigh},
		{[]int{5, 5, 5, 1, 1, 1}, EnergyLow}, // only the three newest count
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.levels), func(t *testing.T) {
			var entries []models.ActivityLogEntry
			for i, lvl := range tt.levels {
				entries = append(entries, withEnergy(daysBefore(len(tt.levels)-i), "Personal", lvl))
			}
			_, advice := New(entries, today).RecentEnergy(3)
			assert.Equal(t, tt.want, advice)
			assert.NotEmpty(t, advice.Message())
		})
	}
}

func TestInvalidDatesIgnored(t *testing.T) {
	entries := []models.ActivityLogEntry{entry("not-a-date", 5), entry(daysBefore(0), 1)}
	e := New(entries, today)
	assert.Equal(t, 1, e.CurrentStreak())
	assert.Len(t, e.DailyTotals(), 1)
}
