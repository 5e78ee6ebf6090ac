package checks

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gruntwork-io/go-commons/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(parallel bool, out io.Writer) *Runner {
	logger := logging.GetLogger("test", "v0.0.0").Logger
	logger.Out = io.Discard
	logger.Level = logrus.DebugLevel

	return &Runner{Parallel: parallel, Output: out, Logger: logger}
}

func TestBasicSuite(t *testing.T) {
	t.Parallel()

	suite := Basic()
	assert.Equal(t, BasicSuiteName, suite.Name)
	assert.Equal(t, []string{AdditionCheckName, CaseConversionCheckName, SequenceLengthCheckName, OutputCheckName}, suite.Names())

	for _, check := range suite.Checks {
		assert.NoError(t, check.Fn(io.Discard), "check %s", check.Name)
	}
}

func TestFailingChecks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		check       Check
		expected    interface{}
		actual      interface{}
		expectedMsg string
	}{
		{
			"addition",
			Addition(2, 3, 4),
			4,
			5,
			`check "addition" failed: expected 4, got 5`,
		},
		{
			"case conversion",
			CaseConversion("hello", "Hello"),
			"Hello",
			"HELLO",
			`check "case-conversion" failed: expected "Hello", got "HELLO"`,
		},
		{
			"sequence length",
			SequenceLength([]int{1, 2}, 3),
			3,
			2,
			`check "sequence-length" failed: expected 3, got 2`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.check.Fn(io.Discard)
			require.Error(t, err)

			var assertionErr *AssertionError
			require.True(t, errors.As(err, &assertionErr))
			assert.Equal(t, testCase.check.Name, assertionErr.Check)
			assert.Equal(t, testCase.expected, assertionErr.Expected)
			assert.Equal(t, testCase.actual, assertionErr.Actual)
			assert.Equal(t, testCase.expectedMsg, err.Error())
		})
	}
}

func TestSequenceLengthDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	seq := []int{1, 2, 3}
	check := SequenceLength(seq, 3)
	seq = append(seq, 4)

	assert.NoError(t, check.Fn(io.Discard))
	assert.Len(t, seq, 4)
}

func TestOutputCheckWritesOnce(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	assert.NoError(t, Output(DiagnosticLine).Fn(&out))
	assert.Equal(t, DiagnosticLine+"\n", out.String())
}

func TestRunBasicSuite(t *testing.T) {
	t.Parallel()

	for _, parallel := range []bool{false, true} {
		var out bytes.Buffer
		report := newTestRunner(parallel, &out).Run(Basic())

		assert.True(t, report.OK())
		assert.Equal(t, BasicSuiteName, report.Suite)
		assert.Equal(t, 4, report.Run)
		assert.Equal(t, 4, report.Passed)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, "4 checks run, 4 passed, 0 failed", report.Summary())
		assert.Empty(t, report.Errors())
		assert.Equal(t, 1, strings.Count(out.String(), DiagnosticLine), "parallel=%v", parallel)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	suite := Suite{
		Name: "broken",
		Checks: []Check{
			Addition(2, 2, 5),
			{Name: "panics", Fn: func(io.Writer) error { panic("boom") }},
			CaseConversion("hello", "HELLO"),
			Output(DiagnosticLine),
		},
	}

	for _, parallel := range []bool{false, true} {
		var out bytes.Buffer
		report := newTestRunner(parallel, &out).Run(suite)

		assert.False(t, report.OK())
		assert.Equal(t, "4 checks run, 2 passed, 2 failed", report.Summary())
		assert.Equal(t, []string{
			`check "addition" failed: expected 5, got 4`,
			`check "panics" failed: panic: boom`,
		}, report.Errors())
		assert.Equal(t, DiagnosticLine+"\n", out.String())
	}
}

func TestRunOrderIndependence(t *testing.T) {
	t.Parallel()

	base := Basic().Checks
	base = append(base, Check{Name: "addition-off-by-one", Fn: Addition(1, 1, 3).Fn})

	outcomes := func(report *Report) map[string]bool {
		rv := map[string]bool{}
		for _, result := range report.Results {
			rv[result.Name] = result.Passed
		}
		return rv
	}

	want := outcomes(newTestRunner(false, io.Discard).Run(Suite{Name: "mixed", Checks: base}))

	reversed := make([]Check, 0, len(base))
	for i := len(base) - 1; i >= 0; i-- {
		reversed = append(reversed, base[i])
	}

	for _, order := range [][]Check{base, reversed} {
		for _, parallel := range []bool{false, true} {
			report := newTestRunner(parallel, io.Discard).Run(Suite{Name: "mixed", Checks: order})
			assert.Equal(t, "5 checks run, 4 passed, 1 failed", report.Summary())
			if diff := cmp.Diff(want, outcomes(report)); diff != "" {
				t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
			}
		}
	}
}

func TestParallelResultsKeepSuiteOrder(t *testing.T) {
	t.Parallel()

	sequential := newTestRunner(false, io.Discard).Run(Basic())

	runner := newTestRunner(true, io.Discard)
	runner.MaxConcurrency = 2
	parallel := runner.Run(Basic())

	ignore := cmpopts.IgnoreFields(Result{}, "Err", "Elapsed")
	if diff := cmp.Diff(sequential.Results, parallel.Results, ignore); diff != "" {
		t.Errorf("results mismatch (-sequential +parallel):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		names         []string
		expectedNames []string
		expectedErr   string
	}{
		{"empty selects all", nil, Basic().Names(), ""},
		{"single", []string{OutputCheckName}, []string{OutputCheckName}, ""},
		{"suite order kept", []string{OutputCheckName, AdditionCheckName}, []string{AdditionCheckName, OutputCheckName}, ""},
		{"duplicates", []string{AdditionCheckName, AdditionCheckName}, []string{AdditionCheckName}, ""},
		{"unknown", []string{AdditionCheckName, "division"}, nil, `Suite "basic" has no check named "division"`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			selected, err := Basic().Select(testCase.names)
			if testCase.expectedErr != "" {
				assert.EqualError(t, err, testCase.expectedErr)
				assert.IsType(t, UnknownCheck{}, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, BasicSuiteName, selected.Name)
			assert.Equal(t, testCase.expectedNames, selected.Names())
		})
	}
}
