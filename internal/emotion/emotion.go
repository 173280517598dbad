// Package emotion analyses the emotional states recorded with activities
// and daily check-ins. Which states count as positive or negative is
// configuration, supplied through a Vocabulary.
package emotion

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/models"
)

type Vocabulary struct {
	States   []string `yaml:"states"`
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		States:   slices.Clone(constants.DefaultEmotionStates),
		Positive: slices.Clone(constants.DefaultPositiveStates),
		Negative: slices.Clone(constants.DefaultNegativeStates),
	}
}

// Validate rejects bucket members that are not states and states placed in
// both buckets.
func (v Vocabulary) Validate() error {
	if len(v.States) == 0 {
		return fmt.Errorf("emotion vocabulary has no states")
	}
	for _, s := range v.Positive {
		if !v.Contains(s) {
			return fmt.Errorf("positive emotion %q is not a known state", s)
		}
		if slices.Contains(v.Negative, s) {
			return fmt.Errorf("emotion %q is both positive and negative", s)
		}
	}
	for _, s := range v.Negative {
		if !v.Contains(s) {
			return fmt.Errorf("negative emotion %q is not a known state", s)
		}
	}
	return nil
}

func (v Vocabulary) Contains(state string) bool {
	return slices.Contains(v.States, state)
}

// Normalize maps state to its canonical spelling, ignoring case.
func (v Vocabulary) Normalize(state string) (string, error) {
	for _, s := range v.States {
		if strings.EqualFold(s, strings.TrimSpace(state)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown emotional state %q (expected one of %s)", state, strings.Join(v.States, ", "))
}

func (v Vocabulary) IsPositive(state string) bool { return slices.Contains(v.Positive, state) }
func (v Vocabulary) IsNegative(state string) bool { return slices.Contains(v.Negative, state) }

// Transition is a before/after pair of emotional states.
type Transition struct {
	Before string
	After  string
}

// Transitions counts before/after pairs. Entries missing either side are
// skipped.
func Transitions(entries []models.ActivityLogEntry) map[Transition]int {
	counts := make(map[Transition]int)
	for i := range entries {
		if !entries[i].HasTransition() {
			continue
		}
		counts[Transition{Before: entries[i].EmotionBefore, After: entries[i].EmotionAfter}]++
	}
	return counts
}

// TransitionCount is one row of a sorted transition table.
type TransitionCount struct {
	Transition
	Count int
}

// SortedTransitions flattens a transition table, most frequent first.
func SortedTransitions(counts map[Transition]int) []TransitionCount {
	out := make([]TransitionCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TransitionCount{Transition: t, Count: n})
	}
	slices.SortFunc(out, func(a, b TransitionCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if c := strings.Compare(a.Before, b.Before); c != 0 {
			return c
		}
		return strings.Compare(a.After, b.After)
	})
	return out
}

// ActivityCount is how often an activity moved a negative state to a
// positive one.
type ActivityCount struct {
	Description string
	Count       int
}

// EffectiveActivities counts negative-to-positive transitions per activity
// description, most effective first.
func (v Vocabulary) EffectiveActivities(entries []models.ActivityLogEntry) []ActivityCount {
	counts := make(map[string]int)
	for _, e := range entries {
		if v.IsNegative(e.EmotionBefore) && v.IsPositive(e.EmotionAfter) {
			counts[e.Description]++
		}
	}
	out := make([]ActivityCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, ActivityCount{Description: d, Count: n})
	}
	slices.SortFunc(out, func(a, b ActivityCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Description, b.Description)
	})
	return out
}
