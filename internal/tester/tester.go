package tester

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// Eq asserts got == want, falling back to reflect.DeepEqual for
// non-comparable types.
func Eq[T any](t *testing.T, got, want T, msgAndArgs ...any) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		fail(t, msgAndArgs, "got=%v want=%v", got, want)
	}
}

// True asserts that cond holds.
func True(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if !cond {
		fail(t, msgAndArgs, "expected condition to be true")
	}
}

// False asserts that cond does not hold.
func False(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if cond {
		fail(t, msgAndArgs, "expected condition to be false")
	}
}

// NoErr asserts that err is nil.
func NoErr(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		fail(t, msgAndArgs, "unexpected error: %v", err)
	}
}

// ErrIs asserts that err wraps target per errors.Is.
func ErrIs(t *testing.T, err, target error, msgAndArgs ...any) {
	t.Helper()
	if !errors.Is(err, target) {
		fail(t, msgAndArgs, "error %v does not wrap %v", err, target)
	}
}

// ErrContains asserts that err is non-nil and its message contains substr.
func ErrContains(t *testing.T, err error, substr string, msgAndArgs ...any) {
	t.Helper()
	if err == nil {
		fail(t, msgAndArgs, "expected an error containing %q, got nil", substr)
		return
	}
	if !strings.Contains(err.Error(), substr) {
		fail(t, msgAndArgs, "error %q does not contain %q", err.Error(), substr)
	}
}

func fail(t *testing.T, msgAndArgs []any, format string, args ...any) {
	t.Helper()
	if len(msgAndArgs) > 0 {
		t.Fatalf("%v: "+format, append([]any{msgAndArgs[0]}, args...)...)
		return
	}
	t.Fatalf(format, args...)
}
