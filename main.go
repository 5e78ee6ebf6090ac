package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gruntwork-io/basics-checker/commands"
)

// This variable is set at build time using -ldflags parameters. For example:
//
// go build -ldflags "-X main.VERSION=$GIT_TAG"
//
// For more info, see: http://stackoverflow.com/a/11355611/483528
var VERSION string

// main runs the root command with the build-time VERSION and exits non-zero
// when the suite fails or the invocation is invalid.
func main() {
	app := commands.CreateCli(VERSION)
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		os.Exit(1)
	}
}
