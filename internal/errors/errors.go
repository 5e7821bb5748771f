package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/momentum/internal/logger"
)

var (
	// ErrNotFound is returned when a habit, goal or category id does not resolve
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePeriod is returned when a completion already exists for the same day or week
	ErrDuplicatePeriod = errors.New("already completed for this period")
	// ErrInvalidTransition is returned when a lifecycle action does not apply to the habit's state
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
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
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
