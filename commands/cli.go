package commands

import (
	"context"
	"fmt"

	"github.com/gruntwork-io/basics-checker/server"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/urfave/cli/v3"
)

// CreateCli builds the root urfave/cli/v3 Command. The default action runs the
// basic suite once, or serves it over HTTP with --serve.
func CreateCli(version string) *cli.Command {
	app := &cli.Command{}

	app.CustomHelpTemplate = ` NAME:
    {{.Name}} - {{.Usage}}

 USAGE:
    {{.FullName}} {{if .VisibleFlags}}[options]{{end}}
    {{if .VisibleFlags}}
 OPTIONS:
    {{range .VisibleFlags}}{{.}}
    {{end}}{{end}}{{if .Version}}
 VERSION:
    {{.Version}}
    {{end}}
`

	app.Name = "basics-checker"
	app.Version = version
	app.Usage = "Runs a fixed suite of basic checks and reports how many passed, optionally serving the outcome over HTTP."
	app.Commands = nil
	app.Flags = defaultFlags()
	app.Action = runBasicsChecker

	return app
}

func runBasicsChecker(ctx context.Context, cmd *cli.Command) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return errors.WithStackTrace(err)
	}

	suite, err := opts.Suite()
	if err != nil {
		return errors.WithStackTrace(err)
	}
	opts.Logger.Infof("Suite %s will run the following checks: %v", suite.Name, suite.Names())

	if opts.Serve {
		opts.Logger.Infof("Listening on %s...", opts.Listener)
		if err := server.StartHttpServer(opts); err != nil {
			return errors.WithStackTrace(err)
		}
		return nil
	}

	report := opts.Runner().Run(suite)
	_, _ = fmt.Fprintln(opts.Output, report.Summary())

	if !report.OK() {
		return SuiteFailed{Suite: report.Suite, Failed: report.Failed, Run: report.Run}
	}
	return nil
}

// FormatError renders err for the terminal: the full stack trace in debug mode,
// the plain message otherwise.
func FormatError(err error) string {
	if isDebugMode() {
		return errors.PrintErrorWithStackTrace(err)
	}
	return err.Error()
}
