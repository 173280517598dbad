package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/emotion"
	"github.com/julianstephens/innerlevel/internal/insight"
)

// Points per level in the reward suggestion request
const pointsPerLevel = 100

type TaskCmd struct {
	Challenge string `arg:"" help:"What you are struggling with."`
	Emotion   string `short:"m" help:"How you feel right now."`
	Energy    int    `short:"e" default:"5" help:"Energy level 1-10."`
}

func (c *TaskCmd) Validate() error {
	if c.Energy < 1 || c.Energy > 10 {
		return fmt.Errorf("energy must be between 1 and 10")
	}
	return nil
}

func (c *TaskCmd) Run(ctx *cli.Context) error {
	state := c.Emotion
	if state != "" {
		s, err := ctx.Vocabulary().Normalize(state)
		if err != nil {
			return err
		}
		state = s
	}
	req := insight.TaskRequest{Challenge: c.Challenge, EmotionalState: state, Energy: c.Energy}
	res := ask(ctx, insight.KindTask, func(cc context.Context) insight.Result[insight.TaskReply] {
		return ctx.Insight.Task(cc, req)
	})
	r := res.Reply
	field(ctx, "Task", r.Task)
	field(ctx, "Why", r.Motivation)
	field(ctx, "Difficulty", fmt.Sprintf("%d/5", r.Difficulty))
	field(ctx, "Estimated points", r.EstimatedXP)
	return nil
}

type EmotionsCmd struct{}

func (c *EmotionsCmd) Run(ctx *cli.Context) error {
	checkIns, err := ctx.Store.LoadEmotionalLog()
	if err != nil {
		return fmt.Errorf("failed to load emotional log: %w", err)
	}
	req := insight.EmotionRequest{Samples: eveningSamples(emotion.Recent(checkIns, 0))}
	res := ask(ctx, insight.KindEmotions, func(cc context.Context) insight.Result[insight.EmotionReply] {
		return ctx.Insight.Emotions(cc, req)
	})
	r := res.Reply
	field(ctx, "Pattern", r.Pattern)
	field(ctx, "Recommendation", r.Recommendation)
	field(ctx, "Positive days", r.PositiveDays)
	field(ctx, "Challenging days", r.ChallengeDays)
	return nil
}

type HabitCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Store.LoadActivityLog()
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}
	checkIns, err := ctx.Store.LoadEmotionalLog()
	if err != nil {
		return fmt.Errorf("failed to load emotional log: %w", err)
	}

	done := make(map[string]bool)
	for _, e := range entries {
		if strings.EqualFold(e.Description, c.Name) {
			done[e.Date] = true
		}
	}
	today := ctx.Ledger.Today()
	completions := make([]bool, 14)
	for i := range completions {
		day := today.AddDate(0, 0, i-len(completions)+1).Format("2006-01-02")
		completions[i] = done[day]
	}

	req := insight.HabitRequest{
		Habit:       c.Name,
		Completions: completions,
		Emotions:    eveningSamples(emotion.Recent(checkIns, len(completions))),
	}
	res := ask(ctx, insight.KindHabit, func(cc context.Context) insight.Result[insight.HabitReply] {
		return ctx.Insight.Habit(cc, req)
	})
	r := res.Reply
	field(ctx, "Success rate", fmt.Sprintf("%.0f%%", r.SuccessRate))
	field(ctx, "Best days", r.BestDays)
	field(ctx, "Emotional correlation", r.EmotionalCorrelation)
	field(ctx, "Streaks", r.StreakAnalysis)
	field(ctx, "Recommendation", r.Recommendation)
	return nil
}

type RewardsCmd struct{}

func (c *RewardsCmd) Run(ctx *cli.Context) error {
	bal, err := ctx.Ledger.Balance()
	if err != nil {
		return err
	}
	history, err := ctx.Ledger.RedemptionHistory()
	if err != nil {
		return err
	}
	rewards, err := ctx.Ledger.Rewards()
	if err != nil {
		return err
	}
	redeemed := make([]string, 0, len(history))
	for _, h := range history {
		redeemed = append(redeemed, h.Name)
	}
	var categories []string
	for _, r := range rewards {
		if !r.Redeemed {
			categories = append(categories, r.Category)
		}
	}

	req := insight.RewardRequest{
		Level:   bal.Earned/pointsPerLevel + 1,
		TotalXP: bal.Earned,
		Preferences: map[string]any{
			"available_points":    bal.Available,
			"redeemed_rewards":    redeemed,
			"wishlist_categories": categories,
		},
	}
	res := ask(ctx, insight.KindRewards, func(cc context.Context) insight.Result[insight.RewardReply] {
		return ctx.Insight.Rewards(cc, req)
	})
	r := res.Reply
	field(ctx, "Next reward", r.ImmediateReward)
	field(ctx, "Milestone reward", r.MilestoneReward)
	list(ctx, "Ideas", r.CustomRewards)
	field(ctx, "Points required", r.XPRequired)
	return nil
}

// progressState summarises the ledger for goal and prediction requests.
func progressState(ctx *cli.Context) (map[string]any, []map[string]any, error) {
	bal, err := ctx.Ledger.Balance()
	if err != nil {
		return nil, nil, err
	}
	eng, err := ctx.Trends()
	if err != nil {
		return nil, nil, err
	}
	week := eng.WeeklyDelta()
	state := map[string]any{
		"total_points":     bal.Earned,
		"available_points": bal.Available,
		"current_streak":   eng.CurrentStreak(),
		"points_this_week": week.ThisWeek,
		"points_last_week": week.PreviousWeek,
	}
	totals := eng.DailyTotals()
	history := make([]map[string]any, 0, len(totals))
	for _, d := range totals {
		history = append(history, map[string]any{"date": d.Date.Format("2006-01-02"), "points": d.Points})
	}
	return state, history, nil
}

type GoalCmd struct {
	Goal string `arg:"" help:"The goal to assess."`
}

func (c *GoalCmd) Run(ctx *cli.Context) error {
	state, history, err := progressState(ctx)
	if err != nil {
		return err
	}
	req := insight.GoalRequest{Goal: c.Goal, Progress: state, History: history}
	res := ask(ctx, insight.KindGoal, func(cc context.Context) insight.Result[insight.GoalReply] {
		return ctx.Insight.Goal(cc, req)
	})
	r := res.Reply
	ctx.Println(cli.ProgressBar(r.ProgressPercentage, 30))
	field(ctx, "Estimated completion", r.EstimatedCompletion)
	field(ctx, "Momentum", fmt.Sprintf("%d/10", r.MomentumScore))
	list(ctx, "Milestones", r.KeyMilestones)
	list(ctx, "Risks", r.RiskFactors)
	list(ctx, "Recommendations", r.Recommendations)
	return nil
}

type PredictCmd struct {
	Goal string `arg:"" help:"The goal to forecast."`
}

func (c *PredictCmd) Run(ctx *cli.Context) error {
	state, history, err := progressState(ctx)
	if err != nil {
		return err
	}
	req := insight.PredictRequest{Goal: c.Goal, CurrentState: state, History: history}
	res := ask(ctx, insight.KindPredict, func(cc context.Context) insight.Result[insight.PredictReply] {
		return ctx.Insight.Predict(cc, req)
	})
	r := res.Reply
	field(ctx, "This week", r.WeeklySummary)
	field(ctx, "Success probability", fmt.Sprintf("%.0f%%", r.SuccessProbability))
	field(ctx, "Confidence", fmt.Sprintf("%d/10", r.ConfidenceScore))
	if len(r.DailyPredictions) > 0 {
		ctx.Println(cli.SectionStyle.Render("Daily outlook:"))
		for _, d := range r.DailyPredictions {
			ctx.Println("  - " + describe(d))
		}
	}
	list(ctx, "Recommended actions", r.RecommendedActions)
	list(ctx, "Potential challenges", r.PotentialChallenges)
	return nil
}

type LearningCmd struct {
	Skill string `arg:"" help:"Skill to analyse; matched against activity names and categories."`
}

func (c *LearningCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Store.LoadActivityLog()
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}
	var practice, emotions []map[string]any
	for _, e := range entries {
		if !matches(e, c.Skill) {
			continue
		}
		p := map[string]any{"date": e.Date, "activity": e.Description, "points": e.Points}
		if e.EnergyLevel != nil {
			p["energy_level"] = *e.EnergyLevel
		}
		practice = append(practice, p)
		if e.HasTransition() {
			emotions = append(emotions, map[string]any{"date": e.Date, "before": e.EmotionBefore, "after": e.EmotionAfter})
		}
	}
	if len(practice) == 0 {
		ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("No activities match %q yet; the insight will be general.", c.Skill)))
	}

	req := insight.LearningRequest{Skill: c.Skill, Practice: practice, Emotions: emotions}
	res := ask(ctx, insight.KindLearning, func(cc context.Context) insight.Result[insight.LearningReply] {
		return ctx.Insight.Learning(cc, req)
	})
	r := res.Reply
	field(ctx, "Learning curve", r.LearningCurve)
	field(ctx, "Best practice time", r.OptimalPracticeTime)
	list(ctx, "Best conditions", r.BestConditions)
	list(ctx, "Improve", r.ImprovementAreas)
	field(ctx, "Next milestone", r.NextMilestone)
	field(ctx, "Estimated mastery", r.EstimatedMasteryTime)
	return nil
}
