package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestLoggersAreUsable(t *testing.T) {
	assert.NotNil(t, New(slog.LevelInfo))
	assert.NotNil(t, NewJSON(slog.LevelDebug))
	assert.False(t, NewNop().Enabled(nil, slog.LevelDebug))
}

func TestNewPrettyTo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPrettyTo(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("canvas saved", "canvas_id", "demo-store-home")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "canvas saved")
	assert.Contains(t, out, "canvas_id=demo-store-home")
}
