package checks

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gruntwork-io/go-commons/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Runner evaluates a suite. Every check runs to completion regardless of the
// outcome of the others.
type Runner struct {
	// Parallel runs the checks in their own goroutines. MaxConcurrency caps how
	// many run at once; zero or less means no cap.
	Parallel       bool
	MaxConcurrency int

	// Output receives diagnostic text written by checks. Defaults to os.Stdout.
	Output io.Writer
	Logger *logrus.Logger
}

// Result is the outcome of a single check.
type Result struct {
	Name    string
	Passed  bool
	Err     error
	Elapsed time.Duration
}

// Report is the outcome of one run of a suite. Results are in suite order.
type Report struct {
	Suite   string
	Run     int
	Passed  int
	Failed  int
	Results []Result
	Elapsed time.Duration
}

// OK is true when no check failed.
func (report *Report) OK() bool {
	return report.Failed == 0
}

// Summary renders the counts as "<run> checks run, <passed> passed, <failed> failed".
func (report *Report) Summary() string {
	return fmt.Sprintf("%d checks run, %d passed, %d failed", report.Run, report.Passed, report.Failed)
}

// Errors returns the failure message of every failed check, in suite order.
func (report *Report) Errors() []string {
	var messages []string
	for _, result := range report.Results {
		if result.Err != nil {
			messages = append(messages, result.Err.Error())
		}
	}
	return messages
}

// Run evaluates every check of the suite and returns the report.
func (runner *Runner) Run(suite Suite) *Report {
	logger := runner.logger()
	out := &syncWriter{w: runner.output()}

	startTime := time.Now()
	results := make([]Result, len(suite.Checks))

	if runner.Parallel {
		var group errgroup.Group
		if runner.MaxConcurrency > 0 {
			group.SetLimit(runner.MaxConcurrency)
		}
		for i, check := range suite.Checks {
			group.Go(func() error {
				results[i] = runCheck(check, out, logger)
				return nil
			})
		}
		_ = group.Wait()
	} else {
		for i, check := range suite.Checks {
			results[i] = runCheck(check, out, logger)
		}
	}

	report := &Report{
		Suite:   suite.Name,
		Run:     len(results),
		Results: results,
		Elapsed: time.Since(startTime),
	}
	for _, result := range results {
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if report.OK() {
		logger.Infof("Suite %s: all checks passed (%s)", suite.Name, report.Summary())
	} else {
		logger.Warnf("Suite %s: at least one check failed (%s)", suite.Name, report.Summary())
	}

	return report
}

// runCheck runs one check and turns a panic into a failure of that check only.
func runCheck(check Check, out io.Writer, logger *logrus.Logger) (result Result) {
	result.Name = check.Name
	startTime := time.Now()

	defer func() {
		if recovered := recover(); recovered != nil {
			result.Err = &AssertionError{Check: check.Name, Message: fmt.Sprintf("panic: %v", recovered)}
		}
		result.Elapsed = time.Since(startTime)
		result.Passed = result.Err == nil

		if result.Passed {
			logger.Infof("Check %s passed", check.Name)
		} else {
			logger.Warnf("Check %s FAILED: %s", check.Name, result.Err)
		}
	}()

	logger.Debugf("Running check %s...", check.Name)
	result.Err = check.Fn(out)
	return result
}

func (runner *Runner) logger() *logrus.Logger {
	if runner.Logger != nil {
		return runner.Logger
	}
	return logging.GetLogger("basics-checker", "v0.0.0").Logger
}

func (runner *Runner) output() io.Writer {
	if runner.Output != nil {
		return runner.Output
	}
	return os.Stdout
}

// syncWriter keeps lines from checks running in parallel from interleaving.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
