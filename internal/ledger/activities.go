package ledger

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
	"github.com/julianstephens/innerlevel/internal/utils"
)

// LogDetails carries the optional fields of a log entry. An empty Date
// means today.
type LogDetails struct {
	Date          string
	Comment       string
	EmotionBefore string
	EmotionAfter  string
	Energy        *int
}

func (l *Ledger) newEntry(category, description string, points int, d LogDetails) (models.ActivityLogEntry, error) {
	date := d.Date
	if date == "" {
		date = l.TodayString()
	}
	entry, err := models.NewActivityLogEntry(date, category, description, points)
	if err != nil {
		return models.ActivityLogEntry{}, err
	}
	entry.Comment = d.Comment
	entry.EmotionBefore = d.EmotionBefore
	entry.EmotionAfter = d.EmotionAfter
	entry.EnergyLevel = d.Energy
	if err := entry.Validate(); err != nil {
		return models.ActivityLogEntry{}, err
	}
	return entry, nil
}

// LogHabit records one completion of a saved habit, earning the habit's
// points. An empty category matches the first habit with that name.
func (l *Ledger) LogHabit(name, category string, d LogDetails) (models.ActivityLogEntry, error) {
	var entry models.ActivityLogEntry
	err := l.store.Update(func(tx storage.Tx) error {
		habits, err := tx.LoadHabits()
		if err != nil {
			return err
		}
		idx := models.FindHabit(habits, name, category)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, name)
		}
		h := habits[idx]
		entry, err = l.newEntry(h.Category, h.Name, h.Points, d)
		if err != nil {
			return err
		}
		return tx.AppendActivityLog(entry)
	})
	if err != nil {
		return models.ActivityLogEntry{}, err
	}
	return entry, nil
}

// LogCustom records a one-off activity worth between 1 and 100 points.
func (l *Ledger) LogCustom(category, description string, points int, d LogDetails) (models.ActivityLogEntry, error) {
	if points < constants.MinCustomPoints || points > constants.MaxCustomPoints {
		return models.ActivityLogEntry{}, fmt.Errorf("%w: %d (expected %d-%d)",
			ErrPointsOutOfRange, points, constants.MinCustomPoints, constants.MaxCustomPoints)
	}
	entry, err := l.newEntry(strings.TrimSpace(category), strings.TrimSpace(description), points, d)
	if err != nil {
		return models.ActivityLogEntry{}, err
	}
	if err := l.store.AppendActivityLog(entry); err != nil {
		return models.ActivityLogEntry{}, err
	}
	return entry, nil
}

// DeleteActivity removes an entry and with it the points it earned.
func (l *Ledger) DeleteActivity(id string) error {
	err := l.store.DeleteActivityLog(id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	return err
}

// Filter narrows History. Zero values match everything; From and To are
// inclusive YYYY-MM-DD bounds.
type Filter struct {
	Categories []string
	From       string
	To         string
	Limit      int
}

func (f Filter) validate() error {
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return err
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return fmt.Errorf("invalid date range: %s is after %s", f.From, f.To)
	}
	return nil
}

func (f Filter) match(e models.ActivityLogEntry) bool {
	if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, func(c string) bool {
		return strings.EqualFold(c, e.Category)
	}) {
		return false
	}
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	return true
}

// History returns matching entries, newest first. Entries sharing a date
// keep reverse insertion order.
func (l *Ledger) History(f Filter) ([]models.ActivityLogEntry, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	entries, err := l.store.LoadActivityLog()
	if err != nil {
		return nil, err
	}
	var out []models.ActivityLogEntry
	for i := len(entries) - 1; i >= 0; i-- {
		if f.match(entries[i]) {
			out = append(out, entries[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.ActivityLogEntry) int {
		return strings.Compare(b.Date, a.Date)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
