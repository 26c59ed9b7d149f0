package config

import (
	"errors"
	"os"
	"strings"
)

// DefaultLogFile is where job outcomes are appended unless overridden.
const DefaultLogFile = "phofile.log"

// AdhocSection names the job built from command-line flags.
const AdhocSection = "adhoc"

// Config holds the run-level settings of one invocation.
type Config struct {
	ConfigPath string
	// Adhoc holds job options given as flags, keyed like file options.
	Adhoc   map[string]string
	LogFile string
	Verbose bool
	Debug   bool
	TUI     bool
}

// ApplyEnv fills unset settings from PHOFILE_* environment variables.
func (c *Config) ApplyEnv() {
	if c.ConfigPath == "" {
		c.ConfigPath = envOrEmpty("PHOFILE_CONFIG")
	}
	if c.LogFile == "" {
		c.LogFile = envOrEmpty("PHOFILE_LOG_FILE")
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if !c.Verbose {
		c.Verbose = envTruthy("PHOFILE_VERBOSE")
	}
	if !c.Debug {
		c.Debug = envTruthy("PHOFILE_DEBUG")
	}
}

// Validate checks that exactly one of a config file or ad-hoc job options
// was given.
func (c Config) Validate() error {
	hasAdhoc := len(c.Adhoc) > 0
	switch {
	case c.ConfigPath != "" && hasAdhoc:
		return errors.New("use either a config file or job flags, not both")
	case c.ConfigPath == "" && !hasAdhoc:
		return errors.New("a config file or --source, --destination, --template and --method are required")
	}
	return nil
}

func envOrEmpty(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}
