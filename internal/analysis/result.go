package analysis

import (
	"fmt"
	"time"
)

// FailureKind classifies why an analysis call produced no text.
type FailureKind string

const (
	KindTimeout           FailureKind = "timeout"
	KindNetworkError      FailureKind = "network_error"
	KindProviderError     FailureKind = "provider_error"
	KindResponseMalformed FailureKind = "response_malformed"
)

// Failure describes an unsuccessful analysis call.
type Failure struct {
	Kind       FailureKind `json:"kind" yaml:"kind"`
	Message    string      `json:"message" yaml:"message"`
	StatusCode int         `json:"status_code,omitempty" yaml:"status_code,omitempty"`
}

func (f *Failure) String() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// State is the lifecycle position of one analysis call.
type State string

const (
	StateNotSent          State = "not_sent"
	StateInFlight         State = "in_flight"
	StateSucceeded        State = "succeeded"
	StateTimedOut         State = "timed_out"
	StateNetworkFailed    State = "network_failed"
	StateProviderRejected State = "provider_rejected"
	StateMalformed        State = "malformed"
)

// Result is the outcome of one analysis call. Exactly one of Text and Failure
// is meaningful: Failure is nil on success.
type Result struct {
	Text       string         `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Failure    *Failure       `json:"failure,omitempty" yaml:"failure,omitempty"`
	Raw        map[string]any `json:"raw_response,omitempty" yaml:"raw_response,omitempty"`
	RequestID  string         `json:"request_id" yaml:"request_id"`
	StatusCode int            `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Latency    time.Duration  `json:"latency" yaml:"latency"`
}

// Succeeded reports whether the call produced analysis text.
func (r *Result) Succeeded() bool {
	return r != nil && r.Failure == nil
}

// State maps the result to its terminal state. A nil result was never sent.
func (r *Result) State() State {
	if r == nil {
		return StateNotSent
	}
	if r.Failure == nil {
		return StateSucceeded
	}
	switch r.Failure.Kind {
	case KindTimeout:
		return StateTimedOut
	case KindNetworkError:
		return StateNetworkFailed
	case KindProviderError:
		return StateProviderRejected
	default:
		return StateMalformed
	}
}
