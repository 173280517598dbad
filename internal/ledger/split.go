package ledger

import (
	"math"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/models"
)

// CategoryShare is one category's slice of the earned points.
type CategoryShare struct {
	Category string
	Points   int
	Percent  int
}

// Split groups entries by category. Percent is points/total*100 rounded to
// the nearest integer, so shares need not sum to exactly 100. With no points
// at all every share is zero.
func Split(entries []models.ActivityLogEntry) []CategoryShare {
	sums := make(map[string]int)
	total := 0
	for _, e := range entries {
		sums[e.Category] += e.Points
		total += e.Points
	}

	shares := make([]CategoryShare, 0, len(sums))
	for cat, pts := range sums {
		s := CategoryShare{Category: cat, Points: pts}
		if total > 0 {
			s.Percent = int(math.Round(float64(pts) / float64(total) * 100))
		}
		shares = append(shares, s)
	}
	slices.SortFunc(shares, func(a, b CategoryShare) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return strings.Compare(a.Category, b.Category)
	})
	return shares
}

func (l *Ledger) CategorySplit() ([]CategoryShare, error) {
	entries, err := l.store.LoadActivityLog()
	if err != nil {
		return nil, err
	}
	return Split(entries), nil
}
