package options

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/gruntwork-io/basics-checker/checks"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Options is the resolved configuration of a basics-checker invocation. The
// commands package builds it from CLI flags and an optional config file; the
// server package and the suite runner consume it without knowing about either.
type Options struct {
	Checks           []string
	Parallel         bool
	MaxConcurrency   int
	Serve            bool
	Listener         string
	Singleflight     bool
	DetailedStatus   bool
	HttpReadTimeout  int
	HttpWriteTimeout int
	HttpIdleTimeout  int
	Output           io.Writer
	Logger           *logrus.Logger
}

// Suite returns the basic suite narrowed to the selected checks.
func (opts *Options) Suite() (checks.Suite, error) {
	return checks.Basic().Select(opts.Checks)
}

// Runner returns a suite runner configured from the options.
func (opts *Options) Runner() *checks.Runner {
	return &checks.Runner{
		Parallel:       opts.Parallel,
		MaxConcurrency: opts.MaxConcurrency,
		Output:         opts.Output,
		Logger:         opts.Logger,
	}
}

// FileConfig is the YAML config file layout. Pointer fields distinguish "unset"
// from zero values so that only keys present in the file are applied.
type FileConfig struct {
	Checks         []string `yaml:"checks"`
	Parallel       *bool    `yaml:"parallel"`
	MaxConcurrency *int     `yaml:"max_concurrency"`
	DetailedStatus *bool    `yaml:"detailed_status"`
	Singleflight   *bool    `yaml:"singleflight"`
	Listener       string   `yaml:"listener"`
	LogLevel       string   `yaml:"log_level"`
}

// LoadConfigFile reads and decodes a YAML config file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*FileConfig, error) {
	config := &FileConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WithStackTrace(InvalidConfig(err.Error()))
	}
	if config.MaxConcurrency != nil && *config.MaxConcurrency < 0 {
		return nil, errors.WithStackTrace(InvalidConfig(fmt.Sprintf("max_concurrency must not be negative, got %d", *config.MaxConcurrency)))
	}
	return config, nil
}

type InvalidConfig string

func (reason InvalidConfig) Error() string {
	return fmt.Sprintf("Invalid config: %s", string(reason))
}

// Apply copies every key set in the file onto opts.
func (config *FileConfig) Apply(opts *Options) {
	if len(config.Checks) > 0 {
		opts.Checks = config.Checks
	}
	if config.Parallel != nil {
		opts.Parallel = *config.Parallel
	}
	if config.MaxConcurrency != nil {
		opts.MaxConcurrency = *config.MaxConcurrency
	}
	if config.DetailedStatus != nil {
		opts.DetailedStatus = *config.DetailedStatus
	}
	if config.Singleflight != nil {
		opts.Singleflight = *config.Singleflight
	}
	if config.Listener != "" {
		opts.Listener = config.Listener
	}
}

// allowedCheckNamePattern matches the lower-case, dash-separated check names.
var allowedCheckNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ParseCheckNames validates a check selection against the basic suite.
func ParseCheckNames(names []string) ([]string, error) {
	rv := []string{}
	for _, name := range names {
		if !allowedCheckNamePattern.MatchString(name) {
			return nil, fmt.Errorf("check name contains forbidden characters: %q", name)
		}
		rv = append(rv, name)
	}

	if _, err := checks.Basic().Select(rv); err != nil {
		return nil, err
	}
	return rv, nil
}
