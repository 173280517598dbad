package ledger

import (
	"fmt"
	"maps"
	"slices"

	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

// AuditReport is the result of a redemption consistency check.
type AuditReport struct {
	Balance Balance
	Issues  []string
}

func (r AuditReport) OK() bool {
	return len(r.Issues) == 0
}

// Check cross-references the reward catalogue with the redemption history.
func Check(entries []models.ActivityLogEntry, book models.RewardBook) AuditReport {
	report := AuditReport{Balance: balanceOf(entries, book)}
	addf := func(format string, args ...any) {
		report.Issues = append(report.Issues, fmt.Sprintf(format, args...))
	}

	byID := make(map[string]models.Reward, len(book.Rewards))
	for _, r := range book.Rewards {
		byID[r.ID] = r
	}

	redemptions := make(map[string]int)
	for _, h := range book.History {
		redemptions[h.RewardID]++
		r, ok := byID[h.RewardID]
		if !ok {
			// reward removed after redemption
			continue
		}
		if !r.Redeemed {
			addf("history records a redemption of %q but the reward is not marked redeemed", r.Name)
		}
		if h.PointsCost != r.PointsRequired {
			addf("redemption of %q cost %d points but the reward requires %d", r.Name, h.PointsCost, r.PointsRequired)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(redemptions)) {
		if n := redemptions[id]; n > 1 {
			addf("reward %s was redeemed %d times", id, n)
		}
	}
	for _, r := range book.Rewards {
		if r.Redeemed && redemptions[r.ID] == 0 {
			addf("reward %q is marked redeemed but has no history record", r.Name)
		}
	}
	if report.Balance.Available < 0 {
		addf("available balance is negative: %d", report.Balance.Available)
	}
	return report
}

// Audit runs Check on a consistent snapshot of the store.
func (l *Ledger) Audit() (AuditReport, error) {
	var report AuditReport
	err := l.store.Update(func(tx storage.Tx) error {
		entries, err := tx.LoadActivityLog()
		if err != nil {
			return err
		}
		book, err := tx.LoadRewards()
		if err != nil {
			return err
		}
		report = Check(entries, book)
		return nil
	})
	return report, err
}
