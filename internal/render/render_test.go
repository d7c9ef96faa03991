package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/vitalis/analyst/internal/analysis"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

func init() {
	color.NoColor = true
}

func snapshot() *models.Snapshot {
	return models.NewSnapshot(map[string]any{
		"cpu":      map[string]any{"overall": 5.0},
		"services": models.CollectionError{Error: "no system bus"},
	})
}

func TestWrite_CollectOnlyPrintsCanonicalSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snapshot(), nil, Options{Format: "text"}))

	want, err := snapshot().JSON()
	require.NoError(t, err)
	assert.Equal(t, string(want)+"\n", buf.String())
}

func TestWrite_TextSuccess(t *testing.T) {
	var buf bytes.Buffer
	result := &analysis.Result{Text: "All good.", Raw: map[string]any{"id": "chatcmpl-1"}}

	require.NoError(t, Write(&buf, snapshot(), result, Options{Format: "text"}))

	out := buf.String()
	assert.Contains(t, out, "All good.")
	assert.Contains(t, out, "Categories not collected: [services]")
	assert.NotContains(t, out, "chatcmpl-1")
}

func TestWrite_TextRaw(t *testing.T) {
	var buf bytes.Buffer
	result := &analysis.Result{Text: "All good.", Raw: map[string]any{"id": "chatcmpl-1"}}

	require.NoError(t, Write(&buf, snapshot(), result, Options{Format: "text", Raw: true}))
	assert.Contains(t, buf.String(), "chatcmpl-1")
}

func TestWrite_TextFailure(t *testing.T) {
	var buf bytes.Buffer
	result := &analysis.Result{
		RequestID: "req-1",
		Failure:   &analysis.Failure{Kind: analysis.KindProviderError, Message: "invalid api key", StatusCode: 401},
	}

	require.NoError(t, Write(&buf, snapshot(), result, Options{Format: "text"}))

	out := buf.String()
	assert.Contains(t, out, "Analysis failed [provider_error]")
	assert.Contains(t, out, "invalid api key")
	assert.Contains(t, out, "HTTP status: 401")
	assert.Contains(t, out, "req-1")
}

func TestWrite_JSONReport(t *testing.T) {
	var buf bytes.Buffer
	result := &analysis.Result{Text: "fine", RequestID: "req-2", Raw: map[string]any{"x": 1.0}}

	require.NoError(t, Write(&buf, snapshot(), result, Options{Format: "json"}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "snapshot")
	res := decoded["result"].(map[string]any)
	assert.Equal(t, "fine", res["analysis"])
	assert.NotContains(t, res, "raw_response")
	assert.Equal(t, map[string]any{"x": 1.0}, result.Raw, "caller's result must not be modified")
}

func TestWrite_YAMLSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snapshot(), nil, Options{Format: "yaml"}))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string]any{"collection_error": "no system bus"}, decoded["services"])
}
