package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/innerlevel/internal/ledger"
	"github.com/julianstephens/innerlevel/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", UserMessage(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// UserMessage turns ledger refusals into something the user can act on.
// Any other error is returned as its own text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var insufficient *ledger.InsufficientPointsError
	if stderrors.As(err, &insufficient) {
		return fmt.Sprintf("you need %d more points to redeem this reward (available: %d, required: %d)",
			insufficient.Needed(), insufficient.Available, insufficient.Required)
	}

	var redeemed *ledger.AlreadyRedeemedError
	if stderrors.As(err, &redeemed) {
		if redeemed.Name != "" {
			return fmt.Sprintf("%q has already been redeemed", redeemed.Name)
		}
		return "this reward has already been redeemed"
	}

	switch {
	case stderrors.Is(err, ledger.ErrRewardNotFound):
		return "no reward with that ID; run 'innerlevel reward list' to see reward IDs"
	case stderrors.Is(err, ledger.ErrTodoAlreadyCompleted):
		return "that to-do is already completed; its points were awarded once"
	case stderrors.Is(err, ledger.ErrTodoNotFound):
		return "no to-do with that ID; run 'innerlevel todo list' to see to-do IDs"
	case stderrors.Is(err, ledger.ErrHabitNotFound):
		return "no such habit; run 'innerlevel habit list' to see habits"
	}
	return err.Error()
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
