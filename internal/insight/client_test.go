package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/insight/insighttest"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestClient(t *testing.T, srv *insighttest.Server, mutate ...func(*Config)) (*Client, *sleepRecorder) {
	t.Helper()
	cfg := Config{BaseURL: srv.BaseURL(), Model: "test-model", MaxAttempts: 3, Delay: time.Second, Timeout: 5 * time.Second}
	for _, m := range mutate {
		m(&cfg)
	}
	rec := &sleepRecorder{}
	return New(cfg, WithSleep(rec.sleep)), rec
}

var validTask = `{"task": "Write one paragraph", "motivation": "You can do it", "difficulty": 3, "estimated_xp": 30}`

func TestTaskSucceeds(t *testing.T) {
	srv := insighttest.New(t, insighttest.Reply("```json\n"+validTask+"\n```"))
	c, rec := newTestClient(t, srv)

	res := c.Task(context.Background(), TaskRequest{Challenge: "Finish thesis", EmotionalState: "Tired", Energy: 4})
	require.NoError(t, res.Err)
	assert.Equal(t, Succeeded, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Degraded)
	assert.Equal(t, TaskReply{Task: "Write one paragraph", Motivation: "You can do it", Difficulty: 3, EstimatedXP: 30}, res.Reply)
	assert.Empty(t, rec.delays)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "test-model", reqs[0].Model)
	assert.False(t, reqs[0].Stream)
	assert.True(t, strings.HasPrefix(reqs[0].Prompt, "Act as a supportive coach."))
	assert.Contains(t, reqs[0].Prompt, `The user is working on: "Finish thesis".`)
	assert.Contains(t, reqs[0].Prompt, "Energy level: 4/10")
	assert.Contains(t, reqs[0].Prompt, "Format the response as JSON with these fields:\n- task: string (the specific task)")
	assert.True(t, strings.HasSuffix(reqs[0].Prompt, "- estimated_xp: number (10-50)"))
}

func TestRetriesWithLinearBackoff(t *testing.T) {
	srv := insighttest.New(t,
		insighttest.Fail(http.StatusInternalServerError),
		insighttest.Fail(http.StatusBadGateway),
		insighttest.Reply(validTask),
	)
	c, rec := newTestClient(t, srv)

	res := c.Task(context.Background(), TaskRequest{Challenge: "x", EmotionalState: "Calm", Energy: 5})
	assert.Equal(t, Succeeded, res.State)
	assert.Equal(t, 3, res.Attempts)
	assert.False(t, res.Degraded)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestExhaustedRetriesFallBack(t *testing.T) {
	srv := insighttest.New(t)
	c, rec := newTestClient(t, srv)

	res := c.Task(context.Background(), TaskRequest{})
	assert.Equal(t, Failed, res.State)
	assert.True(t, res.Degraded)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, TaskReply{}.Fallback(), res.Reply)
	var unavailable *EndpointUnavailableError
	require.ErrorAs(t, res.Err, &unavailable)
	assert.Equal(t, http.StatusServiceUnavailable, unavailable.StatusCode)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
	assert.Len(t, srv.Requests(), 3)
}

func TestMalformedReplyIsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		resp insighttest.Response
	}{
		{"not json", insighttest.Reply("Here is a task: go for a walk")},
		{"missing key", insighttest.Reply(`{"task": "a", "motivation": "b", "difficulty": 2}`)},
		{"null key", insighttest.Reply(`{"task": "a", "motivation": "b", "difficulty": 2, "estimated_xp": null}`)},
		{"wrong type", insighttest.Reply(`{"task": "a", "motivation": "b", "difficulty": "hard", "estimated_xp": 20}`)},
		{"bad envelope", insighttest.Response{Raw: "<html>oops</html>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := insighttest.New(t, tt.resp, insighttest.Reply(validTask))
			c, rec := newTestClient(t, srv)

			res := c.Task(context.Background(), TaskRequest{})
			assert.True(t, res.Degraded)
			assert.Equal(t, 1, res.Attempts)
			var malformed *MalformedReplyError
			assert.ErrorAs(t, res.Err, &malformed)
			assert.Equal(t, TaskReply{}.Fallback(), res.Reply)
			assert.Empty(t, rec.delays)
			assert.Len(t, srv.Requests(), 1)
		})
	}
}

func TestRepliesAreClamped(t *testing.T) {
	srv := insighttest.New(t,
		insighttest.Reply(`{"task": "a", "motivation": "b", "difficulty": 9, "estimated_xp": 500}`),
		insighttest.Reply(`{"progress_percentage": 140, "estimated_completion": "soon", "key_milestones": null, "risk_factors": [], "recommendations": [], "momentum_score": 0}`),
		insighttest.Reply(`{"progress_percentage": 140.5, "estimated_completion": "soon", "key_milestones": [], "risk_factors": [], "recommendations": [], "momentum_score": 0}`),
	)
	c, _ := newTestClient(t, srv)

	task := c.Task(context.Background(), TaskRequest{})
	require.Equal(t, Succeeded, task.State)
	assert.Equal(t, 5, task.Reply.Difficulty)
	assert.Equal(t, 50, task.Reply.EstimatedXP)

	// a null list counts as missing
	goal := c.Goal(context.Background(), GoalRequest{Goal: "run"})
	assert.True(t, goal.Degraded)

	goal = c.Goal(context.Background(), GoalRequest{Goal: "run"})
	require.Equal(t, Succeeded, goal.State)
	assert.Equal(t, 100.0, goal.Reply.ProgressPercentage)
	assert.Equal(t, 1, goal.Reply.MomentumScore)
}

func TestEveryKindHonoursTotalContract(t *testing.T) {
	srv := insighttest.New(t)
	c, _ := newTestClient(t, srv, func(cfg *Config) { cfg.MaxAttempts = 1 })
	ctx := context.Background()

	calls := map[Kind]func() (any, bool, []string){
		KindTask: func() (any, bool, []string) {
			r := c.Task(ctx, TaskRequest{})
			return r.Reply, r.Degraded, jsonKeys[TaskReply]()
		},
		KindEmotions: func() (any, bool, []string) {
			r := c.Emotions(ctx, EmotionRequest{})
			return r.Reply, r.Degraded, jsonKeys[EmotionReply]()
		},
		KindHabit: func() (any, bool, []string) {
			r := c.Habit(ctx, HabitRequest{Habit: "Reading"})
			return r.Reply, r.Degraded, jsonKeys[HabitReply]()
		},
		KindRewards: func() (any, bool, []string) {
			r := c.Rewards(ctx, RewardRequest{})
			return r.Reply, r.Degraded, jsonKeys[RewardReply]()
		},
		KindGoal: func() (any, bool, []string) {
			r := c.Goal(ctx, GoalRequest{})
			return r.Reply, r.Degraded, jsonKeys[GoalReply]()
		},
		KindPredict: func() (any, bool, []string) {
			r := c.Predict(ctx, PredictRequest{})
			return r.Reply, r.Degraded, jsonKeys[PredictReply]()
		},
		KindLearning: func() (any, bool, []string) {
			r := c.Learning(ctx, LearningRequest{})
			return r.Reply, r.Degraded, jsonKeys[LearningReply]()
		},
	}

	for kind, call := range calls {
		t.Run(string(kind), func(t *testing.T) {
			srv.Enqueue(insighttest.Reply("```\nnot json at all\n```"))
			reply, degraded, keys := call()
			assert.True(t, degraded)

			data, err := json.Marshal(reply)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))
			for _, k := range keys {
				assert.Contains(t, fields, k)
				assert.NotNil(t, fields[k], k)
			}
		})
	}
}

func TestFallbackShapes(t *testing.T) {
	rewards := RewardReply{}.Fallback()
	assert.Len(t, rewards.CustomRewards, 3)
	assert.Equal(t, 100, rewards.XPRequired)

	predict := PredictReply{}.Fallback()
	assert.NotNil(t, predict.DailyPredictions)
	assert.Equal(t, 50.0, predict.SuccessProbability)

	goal := GoalReply{}.Fallback()
	assert.Equal(t, 5, goal.MomentumScore)
	assert.Equal(t, "Unable to estimate", goal.EstimatedCompletion)

	learning := LearningReply{}.Fallback()
	assert.Equal(t, "30 minutes daily", learning.OptimalPracticeTime)

	habit := HabitReply{}.Fallback()
	assert.Equal(t, "Continue tracking your habit completion", habit.Recommendation)
}

func TestCancelledContextFallsBackWithoutCalling(t *testing.T) {
	srv := insighttest.New(t, insighttest.Reply(validTask))
	c, _ := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Task(ctx, TaskRequest{})
	assert.True(t, res.Degraded)
	assert.Equal(t, Failed, res.State)
	assert.Zero(t, res.Attempts)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, srv.Requests())
}

func TestCancelDuringBackoffStopsRetries(t *testing.T) {
	srv := insighttest.New(t, insighttest.Fail(http.StatusInternalServerError), insighttest.Reply(validTask))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(Config{BaseURL: srv.BaseURL(), MaxAttempts: 3, Delay: time.Hour}, WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	res := c.Task(ctx, TaskRequest{})
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Len(t, srv.Requests(), 1)
}

func TestAttemptTimeoutIsRetried(t *testing.T) {
	srv := insighttest.New(t, insighttest.Hang(5*time.Second), insighttest.Reply(validTask))
	c, rec := newTestClient(t, srv, func(cfg *Config) { cfg.Timeout = 100 * time.Millisecond })

	res := c.Task(context.Background(), TaskRequest{})
	assert.Equal(t, Succeeded, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestUnreachableEndpoint(t *testing.T) {
	rec := &sleepRecorder{}
	c := New(Config{BaseURL: "http://127.0.0.1:1/api", MaxAttempts: 2, Delay: time.Millisecond}, WithSleep(rec.sleep))

	res := c.Emotions(context.Background(), EmotionRequest{})
	assert.True(t, res.Degraded)
	assert.Equal(t, 2, res.Attempts)
	var unavailable *EndpointUnavailableError
	assert.ErrorAs(t, res.Err, &unavailable)
	assert.Equal(t, EmotionReply{}.Fallback(), res.Reply)
}

func TestBearerToken(t *testing.T) {
	srv := insighttest.New(t, insighttest.Reply(validTask))
	c, _ := newTestClient(t, srv, func(cfg *Config) { cfg.Token = "secret" })

	c.Task(context.Background(), TaskRequest{})
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer secret", reqs[0].Authorization)
}

func TestPromptWindows(t *testing.T) {
	var samples []EmotionSample
	for i := range 10 {
		samples = append(samples, EmotionSample{State: fmt.Sprintf("S%d", i), Energy: i % 5})
	}
	prompt := emotionPrompt(EmotionRequest{Samples: samples})
	assert.Contains(t, prompt, "Day 1: S3 - Energy: 3")
	assert.Contains(t, prompt, "Day 7: S9 - Energy: 4")
	assert.NotContains(t, prompt, "Day 8:")

	completions := make([]bool, 20)
	completions[19] = true
	prompt = habitPrompt(HabitRequest{Habit: "Reading", Completions: completions})
	assert.Contains(t, prompt, "Day 14: Completed")
	assert.NotContains(t, prompt, "Day 15:")

	prompt = learningPrompt(LearningRequest{Skill: "Go", Practice: []map[string]any{{"minutes": 30}}})
	assert.Contains(t, prompt, `Session 1: {"minutes":30}`)
}

func TestDispatchAwait(t *testing.T) {
	srv := insighttest.New(t, insighttest.Reply(validTask))
	c, _ := newTestClient(t, srv)

	p := Dispatch(context.Background(), KindTask, func(ctx context.Context) Result[TaskReply] {
		return c.Task(ctx, TaskRequest{Challenge: "x"})
	})
	res := p.Await(context.Background())
	assert.Equal(t, Succeeded, res.State)
	assert.Equal(t, "Write one paragraph", res.Reply.Task)
	<-p.Done()
}

func TestAwaitGivesUpWithContext(t *testing.T) {
	srv := insighttest.New(t, insighttest.Hang(5*time.Second))
	c, _ := newTestClient(t, srv, func(cfg *Config) {
		cfg.MaxAttempts = 1
		cfg.Timeout = 200 * time.Millisecond
	})

	p := Dispatch(context.Background(), KindRewards, func(ctx context.Context) Result[RewardReply] {
		return c.Rewards(ctx, RewardRequest{Level: 2})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Await(ctx)
	assert.True(t, res.Degraded)
	assert.Equal(t, RewardReply{}.Fallback(), res.Reply)
	assert.ErrorIs(t, res.Err, context.Canceled)

	// the background request still finishes on its own timeout
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("background request did not finish")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```{\"a\":1}```", `{"a":1}`},
		{"  \n```JSON\n{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFences(tt.in), tt.in)
	}
}

func TestDecodeReplyExtractsObject(t *testing.T) {
	reply, err := decodeReply[TaskReply]("Sure! Here you go:\n" + validTask + "\nGood luck.")
	require.NoError(t, err)
	assert.Equal(t, 30, reply.EstimatedXP)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "in-flight", InFlight.String())
	assert.Equal(t, "State(9)", State(9).String())
}
