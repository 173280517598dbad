package emotion

import (
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/models"
)

type Direction string

const (
	Improves Direction = "Improves"
	Declines Direction = "Declines"
	Neutral  Direction = "Neutral"
)

// Trend is the mean change from morning to evening energy.
type Trend struct {
	MeanDelta float64
	Direction Direction
}

func (t Trend) String() string {
	switch t.Direction {
	case Improves:
		return "On average, your energy level improves during the day"
	case Declines:
		return "Your energy level tends to decrease during the day"
	default:
		return "Your energy level stays about the same during the day"
	}
}

// EnergyTrend averages evening minus morning energy over every check-in.
func EnergyTrend(checkIns []models.EmotionalCheckIn) Trend {
	if len(checkIns) == 0 {
		return Trend{Direction: Neutral}
	}
	sum := 0
	for i := range checkIns {
		sum += checkIns[i].EnergyDelta()
	}
	t := Trend{MeanDelta: float64(sum) / float64(len(checkIns))}
	switch {
	case t.MeanDelta > 0:
		t.Direction = Improves
	case t.MeanDelta < 0:
		t.Direction = Declines
	default:
		t.Direction = Neutral
	}
	return t
}

// StateCount is how often a state was reported.
type StateCount struct {
	State string
	Count int
}

// Frequency holds state counts for the morning and evening halves of the
// check-ins.
type Frequency struct {
	Morning []StateCount
	Evening []StateCount
}

func countStates(states []string) []StateCount {
	counts := make(map[string]int)
	for _, s := range states {
		counts[s]++
	}
	out := make([]StateCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, StateCount{State: s, Count: n})
	}
	slices.SortFunc(out, func(a, b StateCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.State, b.State)
	})
	return out
}

func EmotionFrequency(checkIns []models.EmotionalCheckIn) Frequency {
	morning := make([]string, 0, len(checkIns))
	evening := make([]string, 0, len(checkIns))
	for _, c := range checkIns {
		morning = append(morning, c.MorningEmotion)
		evening = append(evening, c.EveningEmotion)
	}
	return Frequency{Morning: countStates(morning), Evening: countStates(evening)}
}

// Recent returns the last n check-ins ordered oldest first.
func Recent(checkIns []models.EmotionalCheckIn, n int) []models.EmotionalCheckIn {
	sorted := slices.Clone(checkIns)
	slices.SortStableFunc(sorted, func(a, b models.EmotionalCheckIn) int {
		return strings.Compare(a.Date, b.Date)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}
