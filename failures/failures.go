// Package failures contains the built-in failure errors a test framework raises
// for failed assertions and timed out tests. Every constructor returns an error
// tagged with the matching capability, so the failure cause classifier can
// recognise it without knowing these types.
package failures

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/bitrise-steplib/steps-test-run-reporter/capability"
	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
)

// EqualError is raised when two values were expected to be equal.
type EqualError struct {
	Expected interface{}
	Actual   interface{}
	Diff     string
}

// NewEqualError ...
func NewEqualError(expected, actual interface{}) error {
	e := &EqualError{
		Expected: expected,
		Actual:   actual,
	}
	if isComposite(expected) || isComposite(actual) {
		e.Diff = cmp.Diff(expected, actual, cmp.Exporter(func(reflect.Type) bool { return true }))
	}

	return capability.Tag(e, capability.AssertionFailure)
}

func (e *EqualError) Error() string {
	var b strings.Builder
	b.WriteString("Assert.Equal() Failure: Values differ\n")
	b.WriteString("Expected: " + formatValue(e.Expected) + "\n")
	b.WriteString("Actual:   " + formatValue(e.Actual))
	if e.Diff != "" {
		b.WriteString("\nDiff (-expected +actual):\n" + e.Diff)
	}
	return b.String()
}

// formatValue renders scalars the way they are written in Go source and
// composite values with their type.
func formatValue(v interface{}) string {
	if isComposite(v) {
		return pretty.Sprintf("%# v", v)
	}
	return fmt.Sprintf("%#v", v)
}

// AssertionError is a free-form assertion failure.
type AssertionError struct {
	Message string
}

// NewAssertionError ...
func NewAssertionError(format string, v ...interface{}) error {
	return capability.Tag(&AssertionError{Message: fmt.Sprintf(format, v...)}, capability.AssertionFailure)
}

func (e *AssertionError) Error() string {
	return e.Message
}

// TimeoutError is raised when a test exceeds its timeout.
type TimeoutError struct {
	Timeout time.Duration
}

// NewTimeoutError ...
func NewTimeoutError(timeout time.Duration) error {
	return capability.Tag(&TimeoutError{Timeout: timeout}, capability.TimeoutFailure)
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Test execution timed out after %d milliseconds", e.Timeout.Milliseconds())
}

func isComposite(v interface{}) bool {
	if v == nil {
		return false
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Ptr:
		return true
	default:
		return false
	}
}
