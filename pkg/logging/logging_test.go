package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		logLevel   slog.Level
		wantOutput bool
		wantJSON   bool
	}{
		{name: "text format info level", format: "text", level: "info", logLevel: slog.LevelInfo, wantOutput: true},
		{name: "json format info level", format: "json", level: "info", logLevel: slog.LevelInfo, wantOutput: true, wantJSON: true},
		{name: "debug level logs debug", format: "text", level: "debug", logLevel: slog.LevelDebug, wantOutput: true},
		{name: "info level filters debug", format: "text", level: "info", logLevel: slog.LevelDebug},
		{name: "warn level filters info", format: "text", level: "warn", logLevel: slog.LevelInfo},
		{name: "error level filters warn", format: "json", level: "ERROR", logLevel: slog.LevelWarn},
		{name: "unknown format defaults to text", format: "banana", level: "info", logLevel: slog.LevelInfo, wantOutput: true},
		{name: "unknown level defaults to info", format: "text", level: "banana", logLevel: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.format, tt.level, &buf)
			logger.Log(t.Context(), tt.logLevel, "search finished", "settled", 42)

			output := strings.TrimSpace(buf.String())
			assert.Equal(t, tt.wantOutput, output != "", "output=%q", output)

			if tt.wantJSON && output != "" {
				var m map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &m))
				assert.Equal(t, "search finished", m["msg"])
				assert.EqualValues(t, 42, m["settled"])
			}
		})
	}
}

func TestNewNilWriter(t *testing.T) {
	assert.NotNil(t, New("text", "info", nil))
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	assert.False(t, OrDiscard(nil).Enabled(t.Context(), slog.LevelError))

	l := New("text", "info", &bytes.Buffer{})
	assert.Same(t, l, OrDiscard(l))
}
