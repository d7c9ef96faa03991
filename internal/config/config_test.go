package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/vitalis/analyst/internal/errs"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analyst.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIKey, EnvModel, EnvEndpoint, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "analysis:\n  model: file-model\n  api_key: file-key\n")
	t.Setenv(EnvModel, "env-model")
	t.Setenv(EnvAPIKey, "env-key")
	timeout := 2.5
	cli := CLIOverrides{Model: "cli-model", APIKey: "cli-key", Timeout: &timeout}

	cfg, err := LoadLayered(cli, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.Model != "cli-model" {
		t.Errorf("Model = %q, want CLI override", cfg.Analysis.Model)
	}
	if cfg.Analysis.APIKey != "cli-key" {
		t.Errorf("APIKey = %q, want CLI override", cfg.Analysis.APIKey)
	}
	if cfg.Analysis.Timeout.Duration != 2500*time.Millisecond {
		t.Errorf("Timeout = %v, want 2.5s", cfg.Analysis.Timeout.Duration)
	}
}

func TestLoadLayered_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "analysis:\n  model: file-model\n  endpoint: https://file.example.com/v1/chat/completions\n")
	t.Setenv(EnvModel, "env-model")

	cfg, err := LoadLayered(CLIOverrides{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.Model != "env-model" {
		t.Errorf("Model = %q, want env override", cfg.Analysis.Model)
	}
	if cfg.Analysis.Endpoint != "https://file.example.com/v1/chat/completions" {
		t.Errorf("Endpoint = %q, want file value", cfg.Analysis.Endpoint)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadLayered(CLIOverrides{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.Analysis.Model)
	}
	if cfg.Analysis.Endpoint != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("Endpoint = %q, want OpenAI default", cfg.Analysis.Endpoint)
	}
	if cfg.Analysis.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s default", cfg.Analysis.Timeout.Duration)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}
}

func TestLoadLayered_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadLayered(CLIOverrides{}, filepath.Join(t.TempDir(), "nope.yaml"))
	if !errs.Is(err, errs.CodeConfigInvalid) {
		t.Errorf("err = %v, want CONFIG_INVALID", err)
	}
}

func TestLoadLayered_BadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "analysis: [unclosed\n")
	_, err := LoadLayered(CLIOverrides{}, path)
	if !errs.Is(err, errs.CodeConfigInvalid) {
		t.Errorf("err = %v, want CONFIG_INVALID", err)
	}
}

func TestLoadLayered_InvalidCLITimeout(t *testing.T) {
	clearEnv(t)
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		timeout := v
		_, err := LoadLayered(CLIOverrides{Timeout: &timeout}, "")
		if !errs.Is(err, errs.CodeConfigInvalid) {
			t.Errorf("timeout %v: err = %v, want CONFIG_INVALID", v, err)
		}
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"timeout: 15s", 15 * time.Second, false},
		{"timeout: 1m30s", 90 * time.Second, false},
		{"timeout: 2.5", 2500 * time.Millisecond, false},
		{"timeout: soon", 0, true},
		{"timeout: -3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out struct {
				Timeout Duration `yaml:"timeout"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &out)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if out.Timeout.Duration != tt.expected {
				t.Errorf("Duration = %v, want %v", out.Timeout.Duration, tt.expected)
			}
		})
	}
}

func TestValidate_KeyRequiredUnlessCollectOnly(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(true); err != nil {
		t.Errorf("collect-only without key: unexpected error %v", err)
	}
	err := cfg.Validate(false)
	if !errs.Is(err, errs.CodeConfigInvalid) {
		t.Errorf("err = %v, want CONFIG_INVALID", err)
	}

	cfg.Analysis.APIKey = "sk-test"
	if err := cfg.Validate(false); err != nil {
		t.Errorf("with key: unexpected error %v", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Output.Format = "xml" }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"top processes", func(c *Config) { c.Collection.TopProcesses = -1 }},
		{"collection timeout", func(c *Config) { c.Collection.Timeout = Duration{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(true); !errs.Is(err, errs.CodeConfigInvalid) {
				t.Errorf("err = %v, want CONFIG_INVALID", err)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.APIKey = "sk-abcdefghijkl1234"

	red := cfg.Redacted()
	if red.Analysis.APIKey != "sk-************1234" {
		t.Errorf("APIKey = %q, want masked key", red.Analysis.APIKey)
	}
	if cfg.Analysis.APIKey != "sk-abcdefghijkl1234" {
		t.Error("Redacted modified the receiver")
	}
	if got := redact("short"); got != "*****" {
		t.Errorf("redact(short) = %q", got)
	}
}
