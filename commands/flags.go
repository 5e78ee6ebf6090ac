package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/gruntwork-io/basics-checker/options"
	"github.com/gruntwork-io/go-commons/logging"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const DEFAULT_LISTENER_IP_ADDRESS = "0.0.0.0"
const DEFAULT_LISTENER_PORT = 5500
const ENV_VAR_NAME_DEBUG_MODE = "BASICS_CHECKER_DEBUG"

const (
	checkFlagName            = "check"
	parallelFlagName         = "parallel"
	maxConcurrencyFlagName   = "max-concurrency"
	configFlagName           = "config"
	serveFlagName            = "serve"
	singleflightFlagName     = "singleflight"
	detailedStatusFlagName   = "detailed-status"
	httpReadTimeoutFlagName  = "http-read-timeout"
	httpWriteTimeoutFlagName = "http-write-timeout"
	httpIdleTimeoutFlagName  = "http-idle-timeout"
	listenerFlagName         = "listener"
	logLevelFlagName         = "log-level"
)

// defaultFlags builds a new set of flags for each command. urfave/cli keeps
// the "was set" state on the flag values, so they must not be shared.
func defaultFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  checkFlagName,
			Usage: "[Optional] The name of a check to run. Specify one or more times. Runs every check when omitted. Example: case-conversion",
		},
		&cli.BoolFlag{
			Name:  parallelFlagName,
			Usage: "[Optional] Run the checks concurrently instead of one after another.",
		},
		&cli.IntFlag{
			Name:  maxConcurrencyFlagName,
			Usage: "[Optional] The maximum number of checks running at once with --parallel. 0 means no limit. Example: 2",
			Value: 0,
		},
		&cli.StringFlag{
			Name:  configFlagName,
			Usage: "[Optional] Path to a YAML config file. Flags given on the command line take precedence over it.",
		},
		&cli.BoolFlag{
			Name:  serveFlagName,
			Usage: "[Optional] Instead of running the suite once, start an HTTP server that runs it on every request and returns 200 OK when all checks pass.",
		},
		&cli.BoolFlag{
			Name:  singleflightFlagName,
			Usage: "[Optional] With --serve, make concurrent requests share the same suite run.",
		},
		&cli.BoolFlag{
			Name:  detailedStatusFlagName,
			Usage: "[Optional] With --serve, return a detailed JSON payload with per-check results and error messages.",
		},
		&cli.IntFlag{
			Name:  httpReadTimeoutFlagName,
			Usage: "[Optional] Timeout, in seconds, for reading the entire HTTP request, including the body. Example: 5",
			Value: 5,
		},
		&cli.IntFlag{
			Name:  httpWriteTimeoutFlagName,
			Usage: "[Optional] Timeout, in seconds, for writing the HTTP response. Example: 10",
			Value: 10,
		},
		&cli.IntFlag{
			Name:  httpIdleTimeoutFlagName,
			Usage: "[Optional] Timeout, in seconds, to wait for the next request when keep-alives are enabled. Example: 15",
			Value: 15,
		},
		&cli.StringFlag{
			Name:  listenerFlagName,
			Usage: "[Optional] With --serve, the IP address and port on which inbound HTTP connections will be accepted.",
			Value: fmt.Sprintf("%s:%d", DEFAULT_LISTENER_IP_ADDRESS, DEFAULT_LISTENER_PORT),
		},
		&cli.StringFlag{
			Name:  logLevelFlagName,
			Usage: fmt.Sprintf("[Optional] Set the log level to `LEVEL`. Must be one of: %v", logrus.AllLevels),
			Value: logrus.InfoLevel.String(),
		},
	}
}

// parseOptions maps the CLI flags, layered over the optional config file, onto
// an options.Options. Flags set explicitly on the command line win over the file.
func parseOptions(cmd *cli.Command) (*options.Options, error) {
	logger := logging.GetLogger("basics-checker", "v0.0.0")

	// By default logrus logs to stderr. But since most output in this tool is informational, we default to stdout.
	logger.Logger.Out = os.Stdout

	opts := &options.Options{
		Listener:         cmd.String(listenerFlagName),
		HttpReadTimeout:  int(cmd.Int(httpReadTimeoutFlagName)),
		HttpWriteTimeout: int(cmd.Int(httpWriteTimeoutFlagName)),
		HttpIdleTimeout:  int(cmd.Int(httpIdleTimeoutFlagName)),
		Serve:            cmd.Bool(serveFlagName),
		Output:           cmd.Root().Writer,
		Logger:           logger.Logger,
	}

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	logLevel := cmd.String(logLevelFlagName)

	if configPath := cmd.String(configFlagName); configPath != "" {
		config, err := options.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		config.Apply(opts)
		if config.LogLevel != "" && !cmd.IsSet(logLevelFlagName) {
			logLevel = config.LogLevel
		}
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, InvalidLogLevel(logLevel)
	}
	logger.Logger.SetLevel(level)

	if cmd.IsSet(checkFlagName) {
		opts.Checks = cmd.StringSlice(checkFlagName)
	}
	checkNames, err := options.ParseCheckNames(opts.Checks)
	if err != nil {
		return nil, err
	}
	opts.Checks = checkNames

	if cmd.IsSet(parallelFlagName) {
		opts.Parallel = cmd.Bool(parallelFlagName)
	}
	if cmd.IsSet(maxConcurrencyFlagName) {
		opts.MaxConcurrency = int(cmd.Int(maxConcurrencyFlagName))
	}
	if opts.MaxConcurrency < 0 {
		return nil, InvalidMaxConcurrency(opts.MaxConcurrency)
	}
	if cmd.IsSet(singleflightFlagName) {
		opts.Singleflight = cmd.Bool(singleflightFlagName)
	}
	if cmd.IsSet(detailedStatusFlagName) {
		opts.DetailedStatus = cmd.Bool(detailedStatusFlagName)
	}
	if cmd.IsSet(listenerFlagName) {
		opts.Listener = cmd.String(listenerFlagName)
	}

	if opts.Serve && opts.Listener == "" {
		return nil, MissingParam(listenerFlagName)
	}

	return opts, nil
}

// Some error types are simple enough that we'd rather just show the error message directly instead of vomiting out a
// whole stack trace in log output. Therefore, allow a debug mode that always shows full stack traces. Otherwise, show
// simple messages.
func isDebugMode() bool {
	envVar, _ := os.LookupEnv(ENV_VAR_NAME_DEBUG_MODE)
	envVar = strings.ToLower(envVar)
	return envVar == "true"
}

// Custom error types

type InvalidLogLevel string

func (invalidLogLevel InvalidLogLevel) Error() string {
	return fmt.Sprintf("The log-level value \"%s\" is invalid", string(invalidLogLevel))
}

type InvalidMaxConcurrency int

func (maxConcurrency InvalidMaxConcurrency) Error() string {
	return fmt.Sprintf("The max-concurrency value %d is invalid, it must not be negative", int(maxConcurrency))
}

type MissingParam string

func (paramName MissingParam) Error() string {
	return fmt.Sprintf("Missing required parameter --%s", string(paramName))
}

// SuiteFailed is returned when at least one check of the suite failed.
type SuiteFailed struct {
	Suite  string
	Failed int
	Run    int
}

func (err SuiteFailed) Error() string {
	return fmt.Sprintf("Suite %s: %d of %d checks failed", err.Suite, err.Failed, err.Run)
}
