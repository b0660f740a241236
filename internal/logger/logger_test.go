package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.level))
		})
	}
}

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", "debug", true},
		{"info logs at debug level", "debug", "info", true},
		{"debug doesn't log at info level", "info", "debug", false},
		{"info logs at info level", "info", "info", true},
		{"warn doesn't log at error level", "error", "warn", false},
		{"error always logs", "debug", "error", true},
		{"unknown level logs", "error", "trace", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.configLevel).(*implLogger)
			assert.Equal(t, tt.shouldLog, log.shouldLog(tt.logLevel))
		})
	}
}

func TestTextFormatFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "warn", Output: &buf})
	ctx := context.Background()

	log.Info(ctx, "hidden %d", 1)
	log.Warn(ctx, "chunk %d/%d failed", 2, 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "chunk 2/3 failed")
	assert.Contains(t, out, "level=WARN")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "debug", Format: "json", Output: &buf})

	log.Debug(context.Background(), "tokens: %d", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tokens: 42", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestMessageWithoutArgsIsNotFormatted(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "info", Output: &buf})

	log.Info(context.Background(), "100% done")

	assert.Contains(t, buf.String(), "100% done")
}
