// Package trends derives streaks, weekly comparisons and time series from
// the activity log. An Engine is a read-only snapshot: it is built from a
// slice of entries and the calendar day that counts as today.
package trends

import (
	"math"
	"slices"
	"time"

	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/utils"
)

type Engine struct {
	entries []models.ActivityLogEntry
	dates   []time.Time // parsed entry dates, parallel to entries
	today   time.Time
	daily   map[time.Time]int
}

// New builds an engine. Entries with unparseable dates are ignored.
func New(entries []models.ActivityLogEntry, today time.Time) *Engine {
	e := &Engine{
		today: utils.CalendarDay(today),
		daily: make(map[time.Time]int),
	}
	for _, entry := range entries {
		d, err := utils.ParseDate(entry.Date)
		if err != nil {
			logger.Warn("Skipping activity with invalid date", "id", entry.ID, "error", err)
			continue
		}
		e.entries = append(e.entries, entry)
		e.dates = append(e.dates, d)
		e.daily[d] += entry.Points
	}
	return e
}

func (e *Engine) active(d time.Time) bool {
	_, ok := e.daily[d]
	return ok
}

func (e *Engine) activeDays() []time.Time {
	days := make([]time.Time, 0, len(e.daily))
	for d := range e.daily {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// CurrentStreak counts consecutive active days ending today. A day without
// activity today means no streak, even if yesterday was active.
func (e *Engine) CurrentStreak() int {
	streak := 0
	for d := e.today; e.active(d); d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive active days anywhere in
// the log.
func (e *Engine) LongestStreak() int {
	longest, run := 0, 0
	var prev time.Time
	for i, d := range e.activeDays() {
		if i > 0 && utils.DaysBetween(prev, d) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = d
	}
	return longest
}

// WeekComparison compares the last seven days with the seven before.
type WeekComparison struct {
	ThisWeek     int
	PreviousWeek int
	Delta        int
	Percent      float64 // one decimal; 0 when PreviousWeek is 0
}

func (e *Engine) WeeklyDelta() WeekComparison {
	weekAgo := e.today.AddDate(0, 0, -7)
	twoWeeksAgo := e.today.AddDate(0, 0, -14)

	var w WeekComparison
	for d, pts := range e.daily {
		switch {
		case !d.Before(weekAgo):
			w.ThisWeek += pts
		case !d.Before(twoWeeksAgo):
			w.PreviousWeek += pts
		}
	}
	w.Delta = w.ThisWeek - w.PreviousWeek
	if w.PreviousWeek != 0 {
		w.Percent = round(float64(w.Delta)/float64(w.PreviousWeek)*100, 1)
	}
	return w
}

// WeekdayTotal is the points and entry count for one day of the week.
type WeekdayTotal struct {
	Weekday time.Weekday
	Sum     int
	Count   int
}

// Monday-first order for weekday reports
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DayOfWeek returns seven rows, Monday through Sunday.
func (e *Engine) DayOfWeek() []WeekdayTotal {
	rows := make([]WeekdayTotal, len(weekOrder))
	index := make(map[time.Weekday]int, len(weekOrder))
	for i, wd := range weekOrder {
		rows[i].Weekday = wd
		index[wd] = i
	}
	for i, entry := range e.entries {
		r := &rows[index[e.dates[i].Weekday()]]
		r.Sum += entry.Points
		r.Count++
	}
	return rows
}

// MostProductiveDay is the weekday with the most points. Ties go to the
// earlier day in Monday-first order. ok is false with no entries.
func (e *Engine) MostProductiveDay() (WeekdayTotal, bool) {
	if len(e.entries) == 0 {
		return WeekdayTotal{}, false
	}
	rows := e.DayOfWeek()
	best := rows[0]
	for _, r := range rows[1:] {
		if r.Sum > best.Sum {
			best = r
		}
	}
	return best, true
}

// DailyTotal is the points earned on one calendar day.
type DailyTotal struct {
	Date   time.Time
	Points int
}

// DailyTotals is a continuous series from the first to the last active day;
// days without activity are zero.
func (e *Engine) DailyTotals() []DailyTotal {
	days := e.activeDays()
	if len(days) == 0 {
		return nil
	}
	first, last := days[0], days[len(days)-1]
	out := make([]DailyTotal, 0, utils.DaysBetween(first, last)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, DailyTotal{Date: d, Points: e.daily[d]})
	}
	return out
}

// AveragePoint is one day of a rolling average. Average is nil until the
// window has filled.
type AveragePoint struct {
	Date    time.Time
	Points  int
	Average *float64
}

func (e *Engine) RollingAverage(window int) []AveragePoint {
	series := e.DailyTotals()
	if window < 1 {
		window = 1
	}
	out := make([]AveragePoint, len(series))
	sum := 0
	for i, day := range series {
		out[i] = AveragePoint{Date: day.Date, Points: day.Points}
		sum += day.Points
		if i >= window {
			sum -= series[i-window].Points
		}
		if i >= window-1 {
			avg := float64(sum) / float64(window)
			out[i].Average = &avg
		}
	}
	return out
}

// ActivityRate is the share of days between the first and last active day
// that had any activity. ok is false with fewer than two distinct dates.
func (e *Engine) ActivityRate() (float64, bool) {
	days := e.activeDays()
	if len(days) < 2 {
		return 0, false
	}
	span := utils.DaysBetween(days[0], days[len(days)-1]) + 1
	return round(float64(len(days))/float64(span)*100, 1), true
}
