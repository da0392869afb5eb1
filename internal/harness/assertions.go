package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/cqlgen/internal/library"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against lib and returns the
// failure messages in assertion order.
func EvaluateAssertions(lib *library.Library, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(lib, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(lib *library.Library, a Assertion) error {
	switch a.Type {
	case AssertDefinitionExists:
		return assertDefinitionExists(lib, a)
	case AssertTerminologyCount:
		return assertTerminologyCount(lib, a)
	case AssertDiagnostic:
		return assertDiagnostic(lib, a)
	case AssertValid:
		return assertValid(lib)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertDefinitionExists(lib *library.Library, a Assertion) error {
	if _, ok := lib.Definition(a.Name); ok {
		return nil
	}
	names := make([]string, 0)
	for _, d := range lib.Definitions() {
		names = append(names, d.Name)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("definition %q", a.Name),
		Actual:   fmt.Sprintf("defined: [%s]", strings.Join(names, ", ")),
	}
}

func assertTerminologyCount(lib *library.Library, a Assertion) error {
	if got := lib.TerminologyCount(); got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d terminology definitions", a.Count),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

// assertDiagnostic counts diagnostics with the assertion's code. Count 0
// asserts the code was never recorded.
func assertDiagnostic(lib *library.Library, a Assertion) error {
	got := 0
	for _, d := range lib.Diagnostics() {
		if d.Code == a.Code {
			got++
		}
	}
	if got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %s diagnostics", a.Count, a.Code),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

func assertValid(lib *library.Library) error {
	result := lib.Validate()
	if result.Valid {
		return nil
	}
	return &AssertionError{
		Type:     AssertValid,
		Expected: "valid library",
		Actual:   strings.Join(result.Warnings, "; "),
	}
}
