// Package analysis sends a telemetry snapshot to an OpenAI-compatible
// chat-completions endpoint and classifies the outcome.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/Guliveer/vitalis/analyst/internal/errs"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultEndpoint is the OpenAI chat-completions URL.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

	// DefaultTimeout bounds a single analysis request.
	DefaultTimeout = 30 * time.Second

	// DefaultTemperature keeps the analysis terse and repeatable.
	DefaultTemperature = 0.2
)

// ClientConfig is the per-invocation configuration of an analysis request.
type ClientConfig struct {
	Model       string
	Endpoint    string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
}

// DefaultClientConfig returns the defaults with no API key.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:       DefaultModel,
		Endpoint:    DefaultEndpoint,
		Timeout:     DefaultTimeout,
		Temperature: DefaultTemperature,
	}
}

// Validate checks that a request can be built from the configuration.
// All problems are reported together as a ConfigInvalid error.
func (c ClientConfig) Validate() error {
	var problems []error

	if strings.TrimSpace(c.APIKey) == "" {
		problems = append(problems, errors.New("an API key is required unless collecting only"))
	}
	if strings.TrimSpace(c.Model) == "" {
		problems = append(problems, errors.New("model must not be empty"))
	}
	if c.Timeout <= 0 || c.Timeout == time.Duration(math.MaxInt64) {
		problems = append(problems, fmt.Errorf("timeout must be positive and finite, got %s", c.Timeout))
	}
	if math.IsNaN(c.Temperature) || math.IsInf(c.Temperature, 0) || c.Temperature < 0 {
		problems = append(problems, fmt.Errorf("temperature must be a non-negative number, got %v", c.Temperature))
	}
	if err := validateEndpoint(c.Endpoint); err != nil {
		problems = append(problems, err)
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.CodeConfigInvalid, "invalid analysis configuration", errors.Join(problems...))
	}
	return nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("endpoint %q is not a valid URL: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", raw)
	}
	return nil
}
