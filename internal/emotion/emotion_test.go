package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/models"
)

func activity(desc, before, after string) models.ActivityLogEntry {
	return models.ActivityLogEntry{Description: desc, EmotionBefore: before, EmotionAfter: after, Points: 1}
}

func TestVocabularyValidate(t *testing.T) {
	require.NoError(t, DefaultVocabulary().Validate())

	tests := []struct {
		name string
		v    Vocabulary
	}{
		{"no states", Vocabulary{}},
		{"unknown positive", Vocabulary{States: []string{"Calm"}, Positive: []string{"Happy"}}},
		{"unknown negative", Vocabulary{States: []string{"Calm"}, Negative: []string{"Sad"}}},
		{"both buckets", Vocabulary{States: []string{"Calm"}, Positive: []string{"Calm"}, Negative: []string{"Calm"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.v.Validate())
		})
	}
}

func TestNormalize(t *testing.T) {
	v := DefaultVocabulary()
	got, err := v.Normalize(" peaceful ")
	require.NoError(t, err)
	assert.Equal(t, "Peaceful", got)

	_, err = v.Normalize("En paz")
	assert.Error(t, err)
}

func TestTransitions(t *testing.T) {
	entries := []models.ActivityLogEntry{
		activity("Run", "Tired", "Euphoric"),
		activity("Run", "Tired", "Euphoric"),
		activity("Read", "Anxious", "Peaceful"),
		activity("Nap", "Tired", ""),
		activity("Work", "", "Motivated"),
	}
	counts := Transitions(entries)
	assert.Equal(t, map[Transition]int{
		{Before: "Tired", After: "Euphoric"}:   2,
		{Before: "Anxious", After: "Peaceful"}: 1,
	}, counts)

	sorted := SortedTransitions(counts)
	require.Len(t, sorted, 2)
	assert.Equal(t, 2, sorted[0].Count)
	assert.Equal(t, "Anxious", sorted[1].Before)
}

func TestEffectiveActivities(t *testing.T) {
	entries := []models.ActivityLogEntry{
		activity("Meditation", "Anxious", "Peaceful"),
		activity("Walk", "Sad", "Euphoric"),
		activity("Meditation", "Tired", "Peaceful"),
		activity("Walk", "Motivated", "Euphoric"), // not from a negative state
		activity("Email", "Anxious", "Tired"),     // not to a positive state
		activity("Bath", "Sad", "Peaceful"),
	}
	assert.Equal(t, []ActivityCount{
		{Description: "Meditation", Count: 2},
		{Description: "Bath", Count: 1},
		{Description: "Walk", Count: 1},
	}, DefaultVocabulary().EffectiveActivities(entries))
}

func TestEffectiveActivitiesUsesConfiguredBuckets(t *testing.T) {
	v := Vocabulary{
		States:   []string{"Ansioso", "En paz"},
		Positive: []string{"En paz"},
		Negative: []string{"Ansioso"},
	}
	require.NoError(t, v.Validate())
	entries := []models.ActivityLogEntry{activity("Yoga", "Ansioso", "En paz")}
	assert.Equal(t, []ActivityCount{{Description: "Yoga", Count: 1}}, v.EffectiveActivities(entries))
	assert.Empty(t, DefaultVocabulary().EffectiveActivities(entries))
}

func checkIn(date, morning string, me int, evening string, ee int) models.EmotionalCheckIn {
	return models.EmotionalCheckIn{ID: date, Date: date, MorningEmotion: morning, MorningEnergy: me, EveningEmotion: evening, EveningEnergy: ee}
}

func TestEnergyTrend(t *testing.T) {
	assert.Equal(t, Trend{Direction: Neutral}, EnergyTrend(nil))

	up := EnergyTrend([]models.EmotionalCheckIn{
		checkIn("2024-01-01", "Tired", 2, "Peaceful", 4),
		checkIn("2024-01-02", "Sad", 3, "Sad", 3),
	})
	assert.Equal(t, Improves, up.Direction)
	assert.InDelta(t, 1.0, up.MeanDelta, 1e-9)

	down := EnergyTrend([]models.EmotionalCheckIn{checkIn("2024-01-01", "Motivated", 5, "Tired", 2)})
	assert.Equal(t, Declines, down.Direction)
	assert.NotEmpty(t, down.String())

	flat := EnergyTrend([]models.EmotionalCheckIn{
		checkIn("2024-01-01", "Tired", 2, "Peaceful", 3),
		checkIn("2024-01-02", "Tired", 3, "Peaceful", 2),
	})
	assert.Equal(t, Neutral, flat.Direction)
}

func TestEmotionFrequency(t *testing.T) {
	freq := EmotionFrequency([]models.EmotionalCheckIn{
		checkIn("2024-01-01", "Tired", 2, "Peaceful", 4),
		checkIn("2024-01-02", "Tired", 3, "Sad", 3),
		checkIn("2024-01-02", "Anxious", 3, "Peaceful", 3),
	})
	assert.Equal(t, []StateCount{{"Tired", 2}, {"Anxious", 1}}, freq.Morning)
	assert.Equal(t, []StateCount{{"Peaceful", 2}, {"Sad", 1}}, freq.Evening)
}

func TestRecent(t *testing.T) {
	logs := []models.EmotionalCheckIn{
		checkIn("2024-01-03", "Tired", 1, "Tired", 1),
		checkIn("2024-01-01", "Tired", 1, "Tired", 1),
		checkIn("2024-01-02", "Tired", 1, "Tired", 1),
	}
	got := Recent(logs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)
	assert.Len(t, Recent(logs, 0), 3)
}
