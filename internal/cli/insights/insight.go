package insights

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/insight"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
)

// ask runs call in the background and waits for it, giving up on Ctrl-C.
func ask[T insight.Reply[T]](ctx *cli.Context, kind insight.Kind, call func(context.Context) insight.Result[T]) insight.Result[T] {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("Asking %s for a %s insight...", ctx.Insight.Config().Model, kind)))
	res := insight.Dispatch(sigCtx, kind, call).Await(sigCtx)
	if res.Degraded {
		logger.Debug("Insight fell back to default", "kind", kind, "attempts", res.Attempts, "error", res.Err)
		ctx.Println(cli.WarningStyle.Render("The insight service gave no usable answer; showing a general suggestion."))
	}
	return res
}

func field(ctx *cli.Context, label string, value any) {
	ctx.Printf("%s %v\n", cli.SectionStyle.Render(label+":"), value)
}

func list(ctx *cli.Context, label string, items []string) {
	ctx.Println(cli.SectionStyle.Render(label + ":"))
	if len(items) == 0 {
		ctx.Println(cli.MutedStyle.Render("  (none)"))
		return
	}
	for _, item := range items {
		ctx.Println("  - " + item)
	}
}

// eveningSamples turns check-ins into emotion samples, oldest first.
func eveningSamples(checkIns []models.EmotionalCheckIn) []insight.EmotionSample {
	out := make([]insight.EmotionSample, 0, len(checkIns))
	for _, ci := range checkIns {
		out = append(out, insight.EmotionSample{State: ci.EveningEmotion, Energy: ci.EveningEnergy})
	}
	return out
}

func matches(e models.ActivityLogEntry, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(e.Description), term) ||
		strings.EqualFold(e.Category, term)
}

// describe renders a free-form reply object as "key: value" pairs in key
// order.
func describe(m map[string]any) string {
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
