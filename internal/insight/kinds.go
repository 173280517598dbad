package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind names an insight request type.
type Kind string

const (
	KindTask     Kind = "task"
	KindEmotions Kind = "emotions"
	KindHabit    Kind = "habit"
	KindRewards  Kind = "rewards"
	KindGoal     Kind = "goal"
	KindPredict  Kind = "predict"
	KindLearning Kind = "learning"
)

// History windows sent with each prompt
const (
	emotionWindow  = 7
	habitWindow    = 14
	goalWindow     = 30
	predictWindow  = 14
	learningWindow = 10
)

type field struct {
	name string
	desc string
}

func coachPrompt(body string, fields []field) string {
	var b strings.Builder
	b.WriteString("Act as a supportive coach. ")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\nFormat the response as JSON with these fields:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.name, f.desc)
	}
	return strings.TrimRight(b.String(), "\n")
}

func last[T any](items []T, n int) []T {
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func clamp[N int | float64](v, lo, hi N) N {
	return min(max(v, lo), hi)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// EmotionSample is one day's emotional state and energy.
type EmotionSample struct {
	State  string `json:"emotional_state"`
	Energy int    `json:"energy_level"`
}

func formatSamples(samples []EmotionSample) string {
	lines := make([]string, len(samples))
	for i, s := range samples {
		lines[i] = fmt.Sprintf("Day %d: %s - Energy: %d", i+1, s.State, s.Energy)
	}
	return strings.Join(lines, "\n")
}

func formatRecords(label string, records []map[string]any) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%s %d: %s", label, i+1, toJSON(r))
	}
	return strings.Join(lines, "\n")
}

// Task

type TaskRequest struct {
	Challenge      string
	EmotionalState string
	Energy         int // 1-10
}

type TaskReply struct {
	Task        string `json:"task"`
	Motivation  string `json:"motivation"`
	Difficulty  int    `json:"difficulty"`
	EstimatedXP int    `json:"estimated_xp"`
}

func (TaskReply) Fallback() TaskReply {
	return TaskReply{
		Task:        "Take a short walk and reflect on your progress",
		Motivation:  "Every small step counts towards your goal!",
		Difficulty:  2,
		EstimatedXP: 20,
	}
}

func (r TaskReply) Normalize() TaskReply {
	r.Difficulty = clamp(r.Difficulty, 1, 5)
	r.EstimatedXP = clamp(r.EstimatedXP, 10, 50)
	return r
}

func taskPrompt(req TaskRequest) string {
	return coachPrompt(fmt.Sprintf(`The user is working on: %q.
Current emotional state: %s
Energy level: %d/10

Generate a small, achievable task for today and a short motivational message.
Keep the task very specific and actionable.`, req.Challenge, req.EmotionalState, clamp(req.Energy, 1, 10)), []field{
		{"task", "string (the specific task)"},
		{"motivation", "string (a short encouraging message)"},
		{"difficulty", "number (1-5)"},
		{"estimated_xp", "number (10-50)"},
	})
}

// Task suggests one small task for today.
func (c *Client) Task(ctx context.Context, req TaskRequest) Result[TaskReply] {
	return execute[TaskReply](ctx, c, KindTask, taskPrompt(req))
}

// Emotions

type EmotionRequest struct {
	Samples []EmotionSample
}

type EmotionReply struct {
	Pattern        string `json:"pattern"`
	Recommendation string `json:"recommendation"`
	PositiveDays   int    `json:"positive_days"`
	ChallengeDays  int    `json:"challenge_days"`
}

func (EmotionReply) Fallback() EmotionReply {
	return EmotionReply{
		Pattern:        "Insufficient data for pattern analysis",
		Recommendation: "Continue logging your emotional state daily",
	}
}

func (r EmotionReply) Normalize() EmotionReply {
	r.PositiveDays = clamp(r.PositiveDays, 0, emotionWindow)
	r.ChallengeDays = clamp(r.ChallengeDays, 0, emotionWindow)
	return r
}

func emotionPrompt(req EmotionRequest) string {
	return coachPrompt("Analyze these emotional logs and provide insights:\n"+formatSamples(last(req.Samples, emotionWindow)), []field{
		{"pattern", "string (observed pattern)"},
		{"recommendation", "string (suggestion for improvement)"},
		{"positive_days", "number (count of positive days)"},
		{"challenge_days", "number (count of challenging days)"},
	})
}

// Emotions looks for patterns in the last seven emotion samples.
func (c *Client) Emotions(ctx context.Context, req EmotionRequest) Result[EmotionReply] {
	return execute[EmotionReply](ctx, c, KindEmotions, emotionPrompt(req))
}

// Habit

type HabitRequest struct {
	Habit       string
	Completions []bool // one per day, oldest first
	Emotions    []EmotionSample
}

type HabitReply struct {
	SuccessRate          float64 `json:"success_rate"`
	BestDays             string  `json:"best_days"`
	EmotionalCorrelation string  `json:"emotional_correlation"`
	Recommendation       string  `json:"recommendation"`
	StreakAnalysis       string  `json:"streak_analysis"`
}

func (HabitReply) Fallback() HabitReply {
	return HabitReply{
		SuccessRate:          0,
		BestDays:             "Insufficient data",
		EmotionalCorrelation: "Insufficient data",
		Recommendation:       "Continue tracking your habit completion",
		StreakAnalysis:       "Insufficient data",
	}
}

func (r HabitReply) Normalize() HabitReply {
	r.SuccessRate = clamp(r.SuccessRate, 0, 100)
	return r
}

func habitPrompt(req HabitRequest) string {
	days := last(req.Completions, habitWindow)
	lines := make([]string, len(days))
	for i, done := range days {
		status := "Missed"
		if done {
			status = "Completed"
		}
		lines[i] = fmt.Sprintf("Day %d: %s", i+1, status)
	}
	body := fmt.Sprintf("Analyze the habit %q and its correlation with emotional states:\n\nCompletion Logs:\n%s\n\nEmotional States:\n%s",
		req.Habit, strings.Join(lines, "\n"), formatSamples(last(req.Emotions, habitWindow)))
	return coachPrompt(body, []field{
		{"success_rate", "number (percentage of successful completions)"},
		{"best_days", "string (days of the week with highest success)"},
		{"emotional_correlation", "string (how emotional state affects habit)"},
		{"recommendation", "string (suggestion for improvement)"},
		{"streak_analysis", "string (analysis of current/longest streaks)"},
	})
}

// Habit relates a habit's completion record to the user's emotions.
func (c *Client) Habit(ctx context.Context, req HabitRequest) Result[HabitReply] {
	return execute[HabitReply](ctx, c, KindHabit, habitPrompt(req))
}

// Rewards

type RewardRequest struct {
	Level       int
	TotalXP     int
	Preferences map[string]any
}

type RewardReply struct {
	ImmediateReward string   `json:"immediate_reward"`
	MilestoneReward string   `json:"milestone_reward"`
	CustomRewards   []string `json:"custom_rewards"`
	XPRequired      int      `json:"xp_required"`
}

func (RewardReply) Fallback() RewardReply {
	return RewardReply{
		ImmediateReward: "Take a short break and enjoy a favorite snack",
		MilestoneReward: "Plan a special activity you've been looking forward to",
		CustomRewards: []string{
			"Watch an episode of your favorite show",
			"Go for a walk in your favorite place",
			"Treat yourself to something special",
		},
		XPRequired: 100,
	}
}

func (r RewardReply) Normalize() RewardReply {
	r.CustomRewards = orEmpty(r.CustomRewards)
	if len(r.CustomRewards) > 3 {
		r.CustomRewards = r.CustomRewards[:3]
	}
	r.XPRequired = max(r.XPRequired, 0)
	return r
}

func rewardPrompt(req RewardRequest) string {
	prefs := req.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	body := fmt.Sprintf("Suggest personalized rewards for a user with:\nLevel: %d\nTotal XP: %d\nPreferences: %s",
		max(req.Level, 1), max(req.TotalXP, 0), toJSON(prefs))
	return coachPrompt(body, []field{
		{"immediate_reward", "string (reward for next achievement)"},
		{"milestone_reward", "string (reward for reaching next level)"},
		{"custom_rewards", "array of strings (3 personalized reward suggestions)"},
		{"xp_required", "number (XP needed for next reward)"},
	})
}

// Rewards suggests rewards matched to the user's progress.
func (c *Client) Rewards(ctx context.Context, req RewardRequest) Result[RewardReply] {
	return execute[RewardReply](ctx, c, KindRewards, rewardPrompt(req))
}

// Goal

type GoalRequest struct {
	Goal     string
	Progress map[string]any
	History  []map[string]any
}

type GoalReply struct {
	ProgressPercentage  float64  `json:"progress_percentage"`
	EstimatedCompletion string   `json:"estimated_completion"`
	KeyMilestones       []string `json:"key_milestones"`
	RiskFactors         []string `json:"risk_factors"`
	Recommendations     []string `json:"recommendations"`
	MomentumScore       int      `json:"momentum_score"`
}

func (GoalReply) Fallback() GoalReply {
	return GoalReply{
		ProgressPercentage:  0,
		EstimatedCompletion: "Unable to estimate",
		KeyMilestones:       []string{"Start tracking progress", "Set clear milestones", "Review regularly"},
		RiskFactors:         []string{"Insufficient data for analysis"},
		Recommendations:     []string{"Continue tracking progress", "Set specific milestones", "Review weekly"},
		MomentumScore:       5,
	}
}

func (r GoalReply) Normalize() GoalReply {
	r.ProgressPercentage = clamp(r.ProgressPercentage, 0, 100)
	r.MomentumScore = clamp(r.MomentumScore, 1, 10)
	r.KeyMilestones = orEmpty(r.KeyMilestones)
	r.RiskFactors = orEmpty(r.RiskFactors)
	r.Recommendations = orEmpty(r.Recommendations)
	return r
}

func goalPrompt(req GoalRequest) string {
	body := fmt.Sprintf("Analyze progress towards this goal: %q\n\nCurrent Progress:\n%s\n\nHistorical Data:\n%s",
		req.Goal, toJSON(orMap(req.Progress)), formatRecords("Day", last(req.History, goalWindow)))
	return coachPrompt(body, []field{
		{"progress_percentage", "number (0-100)"},
		{"estimated_completion", "string (estimated completion date)"},
		{"key_milestones", "array of strings (3 key milestones to reach)"},
		{"risk_factors", "array of strings (potential obstacles)"},
		{"recommendations", "array of strings (3 specific recommendations)"},
		{"momentum_score", "number (1-10, how well progress is maintained)"},
	})
}

func orMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// Goal estimates progress towards a goal from up to 30 days of history.
func (c *Client) Goal(ctx context.Context, req GoalRequest) Result[GoalReply] {
	return execute[GoalReply](ctx, c, KindGoal, goalPrompt(req))
}

// Predict

type PredictRequest struct {
	Goal         string
	CurrentState map[string]any
	History      []map[string]any
}

type PredictReply struct {
	DailyPredictions    []map[string]any `json:"daily_predictions"`
	WeeklySummary       string           `json:"weekly_summary"`
	ConfidenceScore     int              `json:"confidence_score"`
	RecommendedActions  []string         `json:"recommended_actions"`
	PotentialChallenges []string         `json:"potential_challenges"`
	SuccessProbability  float64          `json:"success_probability"`
}

func (PredictReply) Fallback() PredictReply {
	return PredictReply{
		DailyPredictions:    []map[string]any{},
		WeeklySummary:       "Unable to make predictions with current data",
		ConfidenceScore:     5,
		RecommendedActions:  []string{"Continue current routine", "Track progress daily", "Review goals weekly"},
		PotentialChallenges: []string{"Insufficient data for detailed prediction"},
		SuccessProbability:  50,
	}
}

func (r PredictReply) Normalize() PredictReply {
	r.DailyPredictions = orEmpty(r.DailyPredictions)
	r.ConfidenceScore = clamp(r.ConfidenceScore, 1, 10)
	r.RecommendedActions = orEmpty(r.RecommendedActions)
	r.PotentialChallenges = orEmpty(r.PotentialChallenges)
	r.SuccessProbability = clamp(r.SuccessProbability, 0, 100)
	return r
}

func predictPrompt(req PredictRequest) string {
	body := fmt.Sprintf("Predict progress for the upcoming week for this goal: %q\n\nCurrent State:\n%s\n\nRecent History:\n%s",
		req.Goal, toJSON(orMap(req.CurrentState)), formatRecords("Day", last(req.History, predictWindow)))
	return coachPrompt(body, []field{
		{"daily_predictions", "array of objects (predictions for each day)"},
		{"weekly_summary", "string (overall weekly prediction)"},
		{"confidence_score", "number (1-10, confidence in prediction)"},
		{"recommended_actions", "array of strings (3 specific actions)"},
		{"potential_challenges", "array of strings (potential obstacles)"},
		{"success_probability", "number (0-100, probability of meeting goals)"},
	})
}

// Predict forecasts the coming week from up to 14 days of history.
func (c *Client) Predict(ctx context.Context, req PredictRequest) Result[PredictReply] {
	return execute[PredictReply](ctx, c, KindPredict, predictPrompt(req))
}

// Learning

type LearningRequest struct {
	Skill    string
	Practice []map[string]any
	Emotions []map[string]any
}

type LearningReply struct {
	LearningCurve        string   `json:"learning_curve"`
	OptimalPracticeTime  string   `json:"optimal_practice_time"`
	BestConditions       []string `json:"best_conditions"`
	ImprovementAreas     []string `json:"improvement_areas"`
	NextMilestone        string   `json:"next_milestone"`
	EstimatedMasteryTime string   `json:"estimated_mastery_time"`
}

func (LearningReply) Fallback() LearningReply {
	return LearningReply{
		LearningCurve:        "Unable to analyze with current data",
		OptimalPracticeTime:  "30 minutes daily",
		BestConditions:       []string{"Regular practice", "Focused sessions", "Adequate rest"},
		ImprovementAreas:     []string{"Continue tracking practice sessions"},
		NextMilestone:        "Set specific learning goals",
		EstimatedMasteryTime: "Continue tracking progress",
	}
}

func (r LearningReply) Normalize() LearningReply {
	r.BestConditions = orEmpty(r.BestConditions)
	r.ImprovementAreas = orEmpty(r.ImprovementAreas)
	return r
}

func learningPrompt(req LearningRequest) string {
	body := fmt.Sprintf("Analyze learning patterns for this skill: %q\n\nPractice Logs:\n%s\n\nEmotional States:\n%s",
		req.Skill,
		formatRecords("Session", last(req.Practice, learningWindow)),
		formatRecords("Session", last(req.Emotions, learningWindow)))
	return coachPrompt(body, []field{
		{"learning_curve", "string (description of progress)"},
		{"optimal_practice_time", "string (recommended practice duration)"},
		{"best_conditions", "array of strings (optimal conditions for learning)"},
		{"improvement_areas", "array of strings (areas needing focus)"},
		{"next_milestone", "string (next learning milestone)"},
		{"estimated_mastery_time", "string (estimated time to mastery)"},
	})
}

// Learning reviews up to ten practice sessions of a skill.
func (c *Client) Learning(ctx context.Context, req LearningRequest) Result[LearningReply] {
	return execute[LearningReply](ctx, c, KindLearning, learningPrompt(req))
}
