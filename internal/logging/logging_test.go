package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"", zapcore.WarnLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"chatty", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lvl, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lvl)
		})
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("warn", zapcore.AddSync(&buf), "")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("collector", "disk"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "disk")
}

func TestNewLogger_WritesJSONFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "analyst.log")

	logger, err := newLogger("info", zapcore.AddSync(&buf), path)
	require.NoError(t, err)
	logger.Info("Collected snapshot", zap.Int("categories", 11))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "Collected snapshot", entry["msg"])
	assert.Equal(t, float64(11), entry["categories"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_BadFile(t *testing.T) {
	_, err := newLogger("info", zapcore.AddSync(&bytes.Buffer{}), filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := New("shouty", "")
	assert.Error(t, err)
}
