// Package config loads hugoify settings from an optional YAML file, .env files
// and the environment, in increasing order of precedence. Command-line flags
// are applied on top by the CLI.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/logfields"
)

// Environment variables recognised on top of the config file.
const (
	EnvInputPath  = "INPUT_RAWPATH"
	EnvOutputPath = "INPUT_OUTPUTPATH"
)

// Defaults for an unconfigured run.
const (
	DefaultInputDir        = "raw"
	DefaultOutputDir       = "content/docs"
	DefaultExceptionSuffix = "Exception"
)

var envFiles = []string{".env", ".env.local"}

// Config is the resolved configuration of a run.
type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	// ExceptionSuffix marks C++ classes that are exceptions by name. Python
	// exceptions carry their own objtype and ignore it.
	ExceptionSuffix string `yaml:"exception_suffix"`
	WarnOnce        bool   `yaml:"warn_once"`
	// DumpStages writes every normalization stage next to the output.
	DumpStages bool `yaml:"dump_stages"`

	HistoryDB   string `yaml:"history_db,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
	RunLog      string `yaml:"run_log,omitempty"`

	LogLevel  LogLevel  `yaml:"log_level"`
	LogFormat LogFormat `yaml:"log_format"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		InputDir:        DefaultInputDir,
		OutputDir:       DefaultOutputDir,
		ExceptionSuffix: DefaultExceptionSuffix,
		LogLevel:        LogLevelInfo,
		LogFormat:       LogFormatText,
	}
}

// Load resolves the configuration. An empty path skips the config file; a
// named file that does not exist is an error.
func Load(path string) (*Config, error) {
	loadEnvFiles("", slog.Default())

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles populates the environment from the .env files in dir without
// overriding variables that are already set. A file that exists but does not
// parse is skipped with a warning.
func loadEnvFiles(dir string, logger *slog.Logger) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("Ignoring unreadable env file", slog.String("path", path), logfields.Error(err))
		}
	}
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", path).
			Build()
	}

	// Relative paths in the file are relative to the file.
	base := filepath.Dir(path)
	for _, p := range []*string{&c.InputDir, &c.OutputDir, &c.HistoryDB, &c.MetricsFile, &c.RunLog} {
		if *p != "" && !filepath.IsAbs(*p) && *p != ":memory:" {
			*p = filepath.Join(base, *p)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvInputPath)); v != "" {
		c.InputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputPath)); v != "" {
		c.OutputDir = v
	}
}

// Normalize canonicalises enumerations and fills empty fields with defaults,
// then validates the result.
func (c *Config) Normalize() error {
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	level, err := logLevelNormalizer.NormalizeWithValidation(string(c.LogLevel))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid log_level").Build()
	}
	c.LogLevel = level
	format, err := logFormatNormalizer.NormalizeWithValidation(string(c.LogFormat))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid log_format").Build()
	}
	c.LogFormat = format

	if strings.TrimSpace(c.ExceptionSuffix) == "" {
		c.ExceptionSuffix = DefaultExceptionSuffix
	}
	return c.Validate()
}
