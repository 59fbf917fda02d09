package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	t.Run("Should convert all log levels to charm log levels", func(t *testing.T) {
		testCases := []struct {
			level    LogLevel
			expected int
		}{
			{DebugLevel, -4},
			{InfoLevel, 0},
			{WarnLevel, 4},
			{ErrorLevel, 8},
			{DisabledLevel, 1000},
			{LogLevel("WARN"), 4},
			{LogLevel("unknown"), 0},
		}
		for _, tc := range testCases {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write text output with key values", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})
		log.With("component", "render").Info("scene rendered", "scene", "AdvancedScene_1")

		out := buf.String()
		assert.Contains(t, out, "scene rendered")
		assert.Contains(t, out, "component")
		assert.Contains(t, out, "AdvancedScene_1")
	})

	t.Run("Should write JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})
		log.Info("hello")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("Should respect level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		log.Debug("debug line")
		log.Info("info line")
		log.Warn("warn line")

		out := buf.String()
		assert.NotContains(t, out, "debug line")
		assert.NotContains(t, out, "info line")
		assert.Contains(t, out, "warn line")
	})

	t.Run("Should fall back to defaults with nil config", func(t *testing.T) {
		require.NotNil(t, NewLogger(nil))
	})
}
