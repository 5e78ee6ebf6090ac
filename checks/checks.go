// Package checks holds the basic suite: a fixed set of independent checks of
// arithmetic, string case conversion, sequence length and console output, plus
// the Runner that evaluates them and reports a pass/fail outcome per check.
package checks

import (
	"fmt"
	"io"
	"strings"
)

// Check is one independent assertion. Fn receives the writer that diagnostic
// output must go to and returns nil on success or an *AssertionError.
type Check struct {
	Name string
	Fn   func(out io.Writer) error
}

// AssertionError is the only failure kind a check produces. It names the check
// and carries the expected and actual values of the comparison that failed.
type AssertionError struct {
	Check    string
	Expected interface{}
	Actual   interface{}
	Message  string
}

func (err *AssertionError) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("check %q failed: %s", err.Check, err.Message)
	}
	return fmt.Sprintf("check %q failed: expected %#v, got %#v", err.Check, err.Expected, err.Actual)
}

func expectEqual[T comparable](check string, expected T, actual T) error {
	if expected != actual {
		return &AssertionError{Check: check, Expected: expected, Actual: actual}
	}
	return nil
}

const (
	AdditionCheckName       = "addition"
	CaseConversionCheckName = "case-conversion"
	SequenceLengthCheckName = "sequence-length"
	OutputCheckName         = "output"
)

// DiagnosticLine is what the output check of the basic suite prints.
const DiagnosticLine = "some test output"

// Addition checks that a + b equals want.
func Addition(a, b, want int) Check {
	return Check{
		Name: AdditionCheckName,
		Fn: func(io.Writer) error {
			return expectEqual(AdditionCheckName, want, a+b)
		},
	}
}

// CaseConversion checks that upper-casing in yields want.
func CaseConversion(in, want string) Check {
	return Check{
		Name: CaseConversionCheckName,
		Fn: func(io.Writer) error {
			return expectEqual(CaseConversionCheckName, want, strings.ToUpper(in))
		},
	}
}

// SequenceLength checks that a freshly built copy of seq has want elements.
func SequenceLength(seq []int, want int) Check {
	return Check{
		Name: SequenceLengthCheckName,
		Fn: func(io.Writer) error {
			fresh := append([]int(nil), seq...)
			return expectEqual(SequenceLengthCheckName, want, len(fresh))
		},
	}
}

// Output writes line to the output stream once and then asserts a tautology,
// so it always passes.
func Output(line string) Check {
	return Check{
		Name: OutputCheckName,
		Fn: func(out io.Writer) error {
			_, _ = fmt.Fprintln(out, line)
			return expectEqual(OutputCheckName, true, true)
		},
	}
}
