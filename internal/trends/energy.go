package trends

import (
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/innerlevel/internal/constants"
)

// CategoryStat summarises the entries of one category.
type CategoryStat struct {
	Category string
	Total    int
	Mean     float64 // two decimals
	Count    int
}

// CategoryStats is ordered by total points, highest first.
func (e *Engine) CategoryStats() []CategoryStat {
	byCat := make(map[string]*CategoryStat)
	for _, entry := range e.entries {
		s, ok := byCat[entry.Category]
		if !ok {
			s = &CategoryStat{Category: entry.Category}
			byCat[entry.Category] = s
		}
		s.Total += entry.Points
		s.Count++
	}
	out := make([]CategoryStat, 0, len(byCat))
	for _, s := range byCat {
		s.Mean = round(float64(s.Total)/float64(s.Count), 2)
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b CategoryStat) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// DayEnergy is the mean self-reported energy of one day's entries.
type DayEnergy struct {
	Date time.Time
	Mean float64
}

// DailyEnergy covers only days with at least one entry carrying an energy
// level, oldest first.
func (e *Engine) DailyEnergy() []DayEnergy {
	sums := make(map[time.Time][2]int)
	for i, entry := range e.entries {
		if entry.EnergyLevel == nil {
			continue
		}
		s := sums[e.dates[i]]
		sums[e.dates[i]] = [2]int{s[0] + *entry.EnergyLevel, s[1] + 1}
	}
	out := make([]DayEnergy, 0, len(sums))
	for d, s := range sums {
		out = append(out, DayEnergy{Date: d, Mean: round(float64(s[0])/float64(s[1]), 2)})
	}
	slices.SortFunc(out, func(a, b DayEnergy) int { return a.Date.Compare(b.Date) })
	return out
}

// CategoryEnergy is the mean energy reported for one category.
type CategoryEnergy struct {
	Category string
	Mean     float64
}

func (e *Engine) EnergyByCategory() []CategoryEnergy {
	sums := make(map[string][2]int)
	for _, entry := range e.entries {
		if entry.EnergyLevel == nil {
			continue
		}
		s := sums[entry.Category]
		sums[entry.Category] = [2]int{s[0] + *entry.EnergyLevel, s[1] + 1}
	}
	out := make([]CategoryEnergy, 0, len(sums))
	for cat, s := range sums {
		out = append(out, CategoryEnergy{Category: cat, Mean: round(float64(s[0])/float64(s[1]), 2)})
	}
	slices.SortFunc(out, func(a, b CategoryEnergy) int { return strings.Compare(a.Category, b.Category) })
	return out
}

// EnergyAdvice classifies recent energy levels.
type EnergyAdvice string

const (
	EnergyNoData EnergyAdvice = "NoData"
	EnergyLow    EnergyAdvice = "Low"
	EnergySteady EnergyAdvice = "Steady"
	EnergyHigh   EnergyAdvice = "High"
)

// Message is the recommendation shown for the advice.
func (a EnergyAdvice) Message() string {
	switch a {
	case EnergyLow:
		return "Your energy level has been low in recent days. Consider taking a break and focusing on self-care activities."
	case EnergyHigh:
		return "Your energy level is high. It's a good time to engage in activities that require more effort."
	case EnergySteady:
		return "Your energy level is steady."
	default:
		return "Log energy levels with your activities to get recommendations."
	}
}

// RecentEnergy averages the energy of the n most recent entries that carry
// one. Fewer than n such entries yields EnergyNoData.
func (e *Engine) RecentEnergy(n int) (float64, EnergyAdvice) {
	if n < 1 {
		n = constants.RecentEnergyWindow
	}
	idx := make([]int, 0, len(e.entries))
	for i, entry := range e.entries {
		if entry.EnergyLevel != nil {
			idx = append(idx, i)
		}
	}
	if len(idx) < n {
		return 0, EnergyNoData
	}
	// newest first; later appends win among entries sharing a date
	slices.Reverse(idx)
	slices.SortStableFunc(idx, func(a, b int) int { return e.dates[b].Compare(e.dates[a]) })

	sum := 0
	for _, i := range idx[:n] {
		sum += *e.entries[i].EnergyLevel
	}
	mean := round(float64(sum)/float64(n), 2)
	switch {
	case mean <= constants.LowEnergyThreshold:
		return mean, EnergyLow
	case mean >= constants.HighEnergyThreshold:
		return mean, EnergyHigh
	default:
		return mean, EnergySteady
	}
}
