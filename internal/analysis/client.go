package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/analyst/internal/errs"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

const (
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 10 << 20

	// maxErrorBodyChars caps the raw body quoted in a provider error message.
	maxErrorBodyChars = 512
)

// Client performs analysis calls. It is safe for concurrent use.
type Client struct {
	http   *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout should be
// zero; each call is bounded by the request timeout instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client. A nil logger disables logging.
func New(logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http:   &http.Client{},
		logger: logger.Named("analysis"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze builds a request from snap and sends it. Configuration problems
// are returned as errors before any network activity.
func (c *Client) Analyze(ctx context.Context, snap *models.Snapshot, cfg ClientConfig) (*Result, error) {
	req, err := BuildRequest(snap, cfg)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}

// Send performs exactly one POST for req and classifies the outcome.
// The returned error is non-nil only for a nil request; timeouts, transport
// faults, provider rejections and malformed responses are reported through
// Result.Failure.
func (c *Client) Send(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errs.New(errs.CodeInternal, "cannot send a nil analysis request")
	}

	result := &Result{RequestID: uuid.NewString()}
	log := c.logger.With(zap.String("request_id", result.RequestID))

	ctx, cancel := context.WithTimeout(ctx, req.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.endpoint, bytes.NewReader(req.body))
	if err != nil {
		return c.fail(log, result, KindNetworkError, fmt.Sprintf("create request: %v", err)), nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.apiKey)
	httpReq.Header.Set("X-Request-ID", result.RequestID)

	log.Debug("Sending analysis request",
		zap.String("state", string(StateInFlight)),
		zap.String("endpoint", req.endpoint),
		zap.String("model", req.model),
		zap.Duration("timeout", req.timeout))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		result.Latency = time.Since(start)
		kind, msg := classifyTransportError(ctx, err, req.timeout)
		return c.fail(log, result, kind, msg), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	result.Latency = time.Since(start)
	result.StatusCode = resp.StatusCode
	if err != nil {
		kind, msg := classifyTransportError(ctx, err, req.timeout)
		return c.fail(log, result, kind, "read response: "+msg), nil
	}
	truncated := len(body) > maxResponseBytes
	if truncated {
		body = body[:maxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := decodeObject(body)
		result.Raw = raw
		return c.fail(log, result, KindProviderError, providerMessage(resp.StatusCode, raw, body)), nil
	}

	if truncated {
		return c.fail(log, result, KindResponseMalformed,
			fmt.Sprintf("response body exceeds %d bytes", maxResponseBytes)), nil
	}

	raw, err := decodeObject(body)
	if err != nil {
		return c.fail(log, result, KindResponseMalformed, err.Error()), nil
	}
	result.Raw = raw

	text, err := extractMessage(raw)
	if err != nil {
		return c.fail(log, result, KindResponseMalformed, err.Error()), nil
	}
	result.Text = text

	log.Info("Analysis request succeeded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", result.Latency))
	return result, nil
}

func (c *Client) fail(log *zap.Logger, result *Result, kind FailureKind, msg string) *Result {
	result.Failure = &Failure{Kind: kind, Message: msg, StatusCode: result.StatusCode}
	log.Warn("Analysis request failed",
		zap.String("kind", string(kind)),
		zap.String("state", string(result.State())),
		zap.Int("status", result.StatusCode),
		zap.String("message", msg))
	return result
}

// classifyTransportError separates deadline expiry from other transport faults.
func classifyTransportError(ctx context.Context, err error, timeout time.Duration) (FailureKind, string) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout, fmt.Sprintf("no response within %s", timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, fmt.Sprintf("no response within %s", timeout)
	}
	return KindNetworkError, err.Error()
}

// decodeObject decodes body as a JSON object.
func decodeObject(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if raw == nil {
		return nil, errors.New("response is not a JSON object: null")
	}
	return raw, nil
}

// extractMessage returns the first string content found in choices, trimmed.
func extractMessage(raw map[string]any) (string, error) {
	choices, ok := raw["choices"].([]any)
	if !ok {
		return "", errors.New("response has no choices list")
	}
	if len(choices) == 0 {
		return "", errors.New("response choices list is empty")
	}
	for _, choice := range choices {
		entry, ok := choice.(map[string]any)
		if !ok {
			continue
		}
		message, ok := entry["message"].(map[string]any)
		if !ok {
			continue
		}
		content, ok := message["content"].(string)
		if !ok {
			continue
		}
		text := strings.TrimSpace(content)
		if text == "" {
			return "", errors.New("response message content is empty")
		}
		return text, nil
	}
	return "", errors.New("no choice carries a string message content")
}

// providerMessage prefers the provider's error.message and falls back to the
// status line and a trimmed copy of the body.
func providerMessage(status int, raw map[string]any, body []byte) string {
	if apiErr, ok := raw["error"].(map[string]any); ok {
		if msg, ok := apiErr["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	if msg, ok := raw["error"].(string); ok && strings.TrimSpace(msg) != "" {
		return strings.TrimSpace(msg)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodyChars {
		text = text[:maxErrorBodyChars] + "..."
	}
	if text == "" {
		return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}
	return fmt.Sprintf("HTTP %d: %s", status, text)
}
