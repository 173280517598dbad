// Package ledger owns the points accounting. Points are earned by appending
// activity entries and spent only through Redeem; balances are always
// recomputed from the store and never persisted as counters.
package ledger

import (
	"time"

	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
	"github.com/julianstephens/innerlevel/internal/utils"
)

type Ledger struct {
	store storage.Provider
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Ledger)

// WithClock replaces the wall clock used to date redemptions and
// completed to-dos.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func New(store storage.Provider, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the underlying provider.
func (l *Ledger) Store() storage.Provider {
	return l.store
}

// Today is the current calendar day as midnight UTC.
func (l *Ledger) Today() time.Time {
	return utils.CalendarDay(l.now().In(l.loc))
}

// TodayString is Today formatted as YYYY-MM-DD.
func (l *Ledger) TodayString() string {
	return utils.FormatDate(l.Today())
}

// Balance is a consistent snapshot of the three ledger totals.
type Balance struct {
	Earned    int
	Redeemed  int
	Available int
}

func earned(entries []models.ActivityLogEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Points
	}
	return total
}

func spent(history []models.Redemption) int {
	total := 0
	for _, r := range history {
		total += r.PointsCost
	}
	return total
}

func balanceOf(entries []models.ActivityLogEntry, book models.RewardBook) Balance {
	b := Balance{Earned: earned(entries), Redeemed: spent(book.History)}
	b.Available = b.Earned - b.Redeemed
	return b
}

// TotalEarned sums the points of every activity entry.
func (l *Ledger) TotalEarned() (int, error) {
	entries, err := l.store.LoadActivityLog()
	if err != nil {
		return 0, err
	}
	return earned(entries), nil
}

// RedeemedTotal sums the cost of every redemption on record, including
// redemptions of rewards that were later removed.
func (l *Ledger) RedeemedTotal() (int, error) {
	book, err := l.store.LoadRewards()
	if err != nil {
		return 0, err
	}
	return spent(book.History), nil
}

func (l *Ledger) AvailablePoints() (int, error) {
	b, err := l.Balance()
	if err != nil {
		return 0, err
	}
	return b.Available, nil
}

// Balance reads the activity log and reward book inside one exclusive scope
// so the three totals agree with each other.
func (l *Ledger) Balance() (Balance, error) {
	var b Balance
	err := l.store.Update(func(tx storage.Tx) error {
		entries, err := tx.LoadActivityLog()
		if err != nil {
			return err
		}
		book, err := tx.LoadRewards()
		if err != nil {
			return err
		}
		b = balanceOf(entries, book)
		return nil
	})
	return b, err
}
