package analysis

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/vitalis/analyst/internal/errs"
)

func TestBuildRequest_Deterministic(t *testing.T) {
	cfg := testConfig("https://example.test/v1/chat/completions")

	a, err := BuildRequest(testSnapshot(), cfg)
	require.NoError(t, err)
	b, err := BuildRequest(testSnapshot(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Body(), b.Body())
	assert.Equal(t, cfg.Model, a.Model())
	assert.Equal(t, cfg.Endpoint, a.Endpoint())
	assert.Equal(t, cfg.Timeout, a.Timeout())
}

func TestBuildRequest_EmbedsSnapshot(t *testing.T) {
	req, err := BuildRequest(testSnapshot(), testConfig("https://example.test/v1/chat/completions"))
	require.NoError(t, err)

	msgs := req.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, systemPrompt, msgs[0].Content)
	assert.Equal(t, "user", msgs[1].Role)

	content := msgs[1].Content
	require.True(t, strings.HasPrefix(content, userPromptPrefix))
	start := strings.Index(content, "```json\n")
	end := strings.LastIndex(content, "\n```")
	require.True(t, start >= 0 && end > start)

	var embedded map[string]any
	require.NoError(t, json.Unmarshal([]byte(content[start+len("```json\n"):end]), &embedded))

	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	assert.ElementsMatch(t, testSnapshot().Names(), names)
	assert.Equal(t, map[string]any{"collection_error": "no sensors"}, embedded["temperature"])
}

func TestBuildRequest_BodyShape(t *testing.T) {
	req, err := BuildRequest(testSnapshot(), testConfig("https://example.test/v1/chat/completions"))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body(), &body))
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, 0.2, body["temperature"])
	assert.Len(t, body["messages"], 2)
}

func TestBuildRequest_NilSnapshot(t *testing.T) {
	_, err := BuildRequest(nil, testConfig("https://example.test"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeInternal))
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ClientConfig)
		valid  bool
	}{
		{"defaults with key", func(c *ClientConfig) {}, true},
		{"missing key", func(c *ClientConfig) { c.APIKey = "  " }, false},
		{"empty model", func(c *ClientConfig) { c.Model = "" }, false},
		{"zero timeout", func(c *ClientConfig) { c.Timeout = 0 }, false},
		{"negative timeout", func(c *ClientConfig) { c.Timeout = -time.Second }, false},
		{"relative endpoint", func(c *ClientConfig) { c.Endpoint = "/v1/chat" }, false},
		{"ftp endpoint", func(c *ClientConfig) { c.Endpoint = "ftp://example.test/" }, false},
		{"http endpoint", func(c *ClientConfig) { c.Endpoint = "http://localhost:8080/v1" }, true},
		{"negative temperature", func(c *ClientConfig) { c.Temperature = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			cfg.APIKey = "sk-test"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeConfigInvalid))
		})
	}
}

func TestResult_State(t *testing.T) {
	var nilResult *Result
	assert.Equal(t, StateNotSent, nilResult.State())
	assert.False(t, nilResult.Succeeded())
	assert.Equal(t, StateSucceeded, (&Result{Text: "ok"}).State())
	assert.Equal(t, StateMalformed, (&Result{Failure: &Failure{Kind: KindResponseMalformed}}).State())
}

func TestFailure_String(t *testing.T) {
	assert.Equal(t, "provider_error (HTTP 401): invalid api key",
		(&Failure{Kind: KindProviderError, Message: "invalid api key", StatusCode: 401}).String())
	assert.Equal(t, "timeout: no response within 1s",
		(&Failure{Kind: KindTimeout, Message: "no response within 1s"}).String())
}
