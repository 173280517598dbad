package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/ledger"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: stderrors.New("something went wrong"), expected: "Error: something went wrong"},
		{
			name:     "insufficient points",
			err:      fmt.Errorf("redeem: %w", &ledger.InsufficientPointsError{Required: 60, Available: 50}),
			expected: "Error: you need 10 more points to redeem this reward (available: 50, required: 60)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.err))
		})
	}
}

func TestFormatf(t *testing.T) {
	assert.Equal(t, "Error: failed to load database", Formatf("failed to load %s", "database"))
	assert.Equal(t, "Error: connection to localhost:5432 failed", Formatf("connection to %s:%d failed", "localhost", 5432))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "already redeemed with name",
			err:  &ledger.AlreadyRedeemedError{RewardID: "r1", Name: "Movie Night"},
			want: `"Movie Night" has already been redeemed`,
		},
		{
			name: "already redeemed without name",
			err:  fmt.Errorf("wrapped: %w", &ledger.AlreadyRedeemedError{RewardID: "r1"}),
			want: "this reward has already been redeemed",
		},
		{
			name: "unknown reward",
			err:  fmt.Errorf("%w: abc", ledger.ErrRewardNotFound),
			want: "no reward with that ID; run 'innerlevel reward list' to see reward IDs",
		},
		{
			name: "completed to-do",
			err:  ledger.ErrTodoAlreadyCompleted,
			want: "that to-do is already completed; its points were awarded once",
		},
		{
			name: "other",
			err:  stderrors.New("disk full"),
			want: "disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(&ledger.InsufficientPointsError{Required: 100, Available: 40})
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, stderr.String(), "Error: you need 60 more points")
}

func TestFatalNil(t *testing.T) {
	// returns without exiting
	Fatal(nil)
}
