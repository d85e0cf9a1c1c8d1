package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/tower/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", config.JSONLogFormat, &buf)
	logger.Debug("probe", "group", "Local(0)")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "probe", record["msg"])
	assert.Equal(t, "Local(0)", record["group"])
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "time")
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", config.TextLogFormat, &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", "code", "R001")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "code=R001")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Log.Level = "debug"
	logger := FromConfig(cfg, &buf)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
