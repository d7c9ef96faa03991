package analysis

import (
	"encoding/json"
	"time"

	"github.com/Guliveer/vitalis/analyst/internal/errs"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

// Message is one chat message of the request payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type payload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Request is a fully built analysis call. It is immutable once built.
type Request struct {
	model    string
	endpoint string
	apiKey   string
	timeout  time.Duration
	messages []Message
	body     []byte
}

// BuildRequest turns a snapshot into a request. It performs no I/O and yields
// the same body for the same snapshot and configuration.
func BuildRequest(snap *models.Snapshot, cfg ClientConfig) (*Request, error) {
	if snap == nil {
		return nil, errs.New(errs.CodeInternal, "cannot build an analysis request from a nil snapshot")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	snapshotJSON, err := snap.JSON()
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "failed to serialize snapshot", err)
	}

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt(snapshotJSON)},
	}
	body, err := json.Marshal(payload{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "failed to encode request payload", err)
	}

	return &Request{
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		messages: messages,
		body:     body,
	}, nil
}

// Model returns the chat model identifier sent in the payload.
func (r *Request) Model() string { return r.model }

// Endpoint returns the URL the request is posted to.
func (r *Request) Endpoint() string { return r.endpoint }

// Timeout returns the bound on one Send of this request.
func (r *Request) Timeout() time.Duration { return r.timeout }

// Messages returns a copy of the chat messages.
func (r *Request) Messages() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Body returns a copy of the serialized JSON payload.
func (r *Request) Body() []byte {
	out := make([]byte, len(r.body))
	copy(out, r.body)
	return out
}
