package core

import "fmt"

// Verify reports a broken invariant when cond is false. In debug builds the
// failure is logged and the call panics with an error wrapping
// ErrInvariantViolation; release builds compile the check out.
func Verify(cond bool, format string, args ...interface{}) {
	if !DebugChecksEnabled || cond {
		return
	}
	fail(format, args...)
}

// Unexpected reports a branch that must never execute.
func Unexpected(format string, args ...interface{}) {
	if !DebugChecksEnabled {
		LogError(format, args...)
		return
	}
	fail(format, args...)
}

func fail(format string, args ...interface{}) {
	err := fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
	LogError("%s", err)
	panic(err)
}
