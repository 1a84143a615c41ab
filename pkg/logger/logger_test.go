package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/pkg/config"
)

func jsonConfig(level string) *config.Config {
	return &config.Config{
		Env:       "development",
		LogLevel:  level,
		LogFormat: "json",
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig("warn"), &buf)

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "development", entry["env"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig("debug"), &buf)

	log.WithFields(map[string]interface{}{
		"matched": 12,
		"sector":  "Energy",
	}).Info("Screen applied")

	entry := decodeLine(t, &buf)
	assert.Equal(t, float64(12), entry["matched"])
	assert.Equal(t, "Energy", entry["sector"])
	assert.Equal(t, "Screen applied", entry["message"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(jsonConfig("debug"), &buf)

	log.WithError(errors.New("snapshot missing")).WithField("date", "2026-01-05").Error("Load failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "snapshot missing", entry["error"])
	assert.Equal(t, "2026-01-05", entry["date"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := jsonConfig("info")
	cfg.LogFormat = "console"

	NewWithWriter(cfg, &buf).Infof("fetched %d rows", 2041)
	assert.True(t, strings.Contains(buf.String(), "fetched 2041 rows"))
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Error("ignored")
	})
}
