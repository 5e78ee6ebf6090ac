package checks

import "fmt"

const BasicSuiteName = "basic"

// Suite is a named, ordered group of independent checks.
type Suite struct {
	Name   string
	Checks []Check
}

// Basic returns the fixed suite of four checks.
func Basic() Suite {
	return Suite{
		Name: BasicSuiteName,
		Checks: []Check{
			Addition(2, 2, 4),
			CaseConversion("hello", "HELLO"),
			SequenceLength([]int{1, 2, 3}, 3),
			Output(DiagnosticLine),
		},
	}
}

// Names returns the check names in suite order.
func (suite Suite) Names() []string {
	names := make([]string, 0, len(suite.Checks))
	for _, check := range suite.Checks {
		names = append(names, check.Name)
	}
	return names
}

// Select returns a copy of the suite holding only the named checks, kept in
// suite order. An empty list selects every check.
func (suite Suite) Select(names []string) (Suite, error) {
	if len(names) == 0 {
		return suite, nil
	}

	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = true
	}

	selected := Suite{Name: suite.Name}
	for _, check := range suite.Checks {
		if wanted[check.Name] {
			selected.Checks = append(selected.Checks, check)
			delete(wanted, check.Name)
		}
	}

	for _, name := range names {
		if wanted[name] {
			return Suite{}, UnknownCheck{Suite: suite.Name, Check: name}
		}
	}

	return selected, nil
}

type UnknownCheck struct {
	Suite string
	Check string
}

func (err UnknownCheck) Error() string {
	return fmt.Sprintf("Suite %q has no check named %q", err.Suite, err.Check)
}
