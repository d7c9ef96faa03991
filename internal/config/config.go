// Package config handles configuration loading from YAML files, environment
// variables and command-line flags.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/vitalis/analyst/internal/analysis"
	"github.com/Guliveer/vitalis/analyst/internal/errs"
)

// Environment variables read by LoadLayered.
const (
	EnvAPIKey   = "OPENAI_API_KEY"
	EnvModel    = "ANALYST_MODEL"
	EnvEndpoint = "ANALYST_ENDPOINT"
	EnvLogLevel = "ANALYST_LOG_LEVEL"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
// It accepts duration strings ("15s", "1m30s") and plain numbers of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
	if parsed, err := time.ParseDuration(value.Value); err == nil {
		d.Duration = parsed
		return nil
	}
	secs, err := strconv.ParseFloat(value.Value, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	parsed, err := Seconds(secs)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Seconds converts a number of seconds to a Duration. NaN, infinite,
// non-positive and out-of-range values are rejected.
func Seconds(secs float64) (time.Duration, error) {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("timeout must be finite, got %v", secs)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %v", secs)
	}
	if secs > float64(math.MaxInt64)/float64(time.Second) {
		return 0, fmt.Errorf("timeout %v seconds is out of range", secs)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Config holds all analyst configuration.
type Config struct {
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Collection CollectionConfig `yaml:"collection"`
	Logging    LoggingConfig    `yaml:"logging"`
	Output     OutputConfig     `yaml:"output"`
}

// AnalysisConfig holds chat-completions endpoint settings.
type AnalysisConfig struct {
	Model       string   `yaml:"model"`
	Endpoint    string   `yaml:"endpoint"`
	APIKey      string   `yaml:"api_key,omitempty"`
	Timeout     Duration `yaml:"timeout"`
	Temperature float64  `yaml:"temperature"`
}

// CollectionConfig holds snapshot collection settings.
type CollectionConfig struct {
	Timeout           Duration `yaml:"timeout"`
	CPUSampleInterval Duration `yaml:"cpu_sample_interval"`
	TopProcesses      int      `yaml:"top_processes"`
}

// LoggingConfig holds logging settings. An empty File disables file logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format      string `yaml:"format"`
	Raw         bool   `yaml:"raw"`
	MetricsFile string `yaml:"metrics_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	client := analysis.DefaultClientConfig()
	return &Config{
		Analysis: AnalysisConfig{
			Model:       client.Model,
			Endpoint:    client.Endpoint,
			Timeout:     Duration{client.Timeout},
			Temperature: client.Temperature,
		},
		Collection: CollectionConfig{
			Timeout:           Duration{10 * time.Second},
			CPUSampleInterval: Duration{time.Second},
			TopProcesses:      10,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty strings and nil pointers are treated as "not set" and skipped.
type CLIOverrides struct {
	Model        string
	Endpoint     string
	APIKey       string
	LogLevel     string
	Format       string
	MetricsFile  string
	Timeout      *float64
	TopProcesses *int
	Raw          bool
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > YAML file > defaults.
//
// An optional configPath argument controls file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no file)
//
// An explicitly named file that cannot be read is an error; a discovered one
// that vanished is skipped.
func LoadLayered(cli CLIOverrides, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := len(configPath) > 0
	filePath := Locate()
	if explicit {
		filePath = configPath[0]
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errs.WrapWithContext(errs.CodeConfigInvalid, "parsing config file", err,
					map[string]any{"path": filePath})
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, errs.WrapWithContext(errs.CodeConfigInvalid, "reading config file", err,
				map[string]any{"path": filePath})
		}
	}

	applyEnvOverrides(cfg)

	if err := applyCLIOverrides(cfg, cli); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.Analysis.APIKey = key
	}
	if model := os.Getenv(EnvModel); model != "" {
		cfg.Analysis.Model = model
	}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Analysis.Endpoint = endpoint
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
}

func applyCLIOverrides(cfg *Config, cli CLIOverrides) error {
	if cli.Model != "" {
		cfg.Analysis.Model = cli.Model
	}
	if cli.Endpoint != "" {
		cfg.Analysis.Endpoint = cli.Endpoint
	}
	if cli.APIKey != "" {
		cfg.Analysis.APIKey = cli.APIKey
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}
	if cli.MetricsFile != "" {
		cfg.Output.MetricsFile = cli.MetricsFile
	}
	if cli.Raw {
		cfg.Output.Raw = true
	}
	if cli.TopProcesses != nil {
		cfg.Collection.TopProcesses = *cli.TopProcesses
	}
	if cli.Timeout != nil {
		d, err := Seconds(*cli.Timeout)
		if err != nil {
			return errs.Wrap(errs.CodeConfigInvalid, "invalid --timeout", err)
		}
		cfg.Analysis.Timeout = Duration{d}
	}
	return nil
}

// ClientConfig derives the analysis client configuration.
func (c *Config) ClientConfig() analysis.ClientConfig {
	return analysis.ClientConfig{
		Model:       c.Analysis.Model,
		Endpoint:    c.Analysis.Endpoint,
		APIKey:      c.Analysis.APIKey,
		Timeout:     c.Analysis.Timeout.Duration,
		Temperature: c.Analysis.Temperature,
	}
}

// Validate checks that the configuration can drive a run. Analysis settings,
// including the API key, are only checked when the run will call the endpoint.
func (c *Config) Validate(collectOnly bool) error {
	var problems []error

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		problems = append(problems, fmt.Errorf("output format must be one of text, json, yaml (got %q)", c.Output.Format))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Errorf("log level %q is not recognised", c.Logging.Level))
	}
	if c.Collection.TopProcesses < 0 {
		problems = append(problems, fmt.Errorf("top_processes must not be negative (got %d)", c.Collection.TopProcesses))
	}
	if c.Collection.Timeout.Duration <= 0 {
		problems = append(problems, fmt.Errorf("collection timeout must be positive (got %s)", c.Collection.Timeout.Duration))
	}
	if c.Collection.CPUSampleInterval.Duration < 0 {
		problems = append(problems, fmt.Errorf("cpu_sample_interval must not be negative (got %s)", c.Collection.CPUSampleInterval.Duration))
	}
	if len(problems) > 0 {
		return errs.Wrap(errs.CodeConfigInvalid, "invalid configuration", errors.Join(problems...))
	}

	if !collectOnly {
		return c.ClientConfig().Validate()
	}
	return nil
}

// Redacted returns a copy that is safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Analysis.APIKey != "" {
		out.Analysis.APIKey = redact(out.Analysis.APIKey)
	}
	return &out
}

func redact(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", len(key)-7) + key[len(key)-4:]
}
