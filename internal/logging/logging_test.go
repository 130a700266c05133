package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger, runID := WithRunID(logger)
	logger.Debug().Msg("hidden")
	logger.Info().Str("file", "deposit.x9").Msg("validated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "validated", entry["message"])
	assert.Equal(t, "x9tool", entry["service"])
	assert.Equal(t, runID, entry["run_id"])
	assert.Equal(t, "deposit.x9", entry["file"])
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "x9tool.log")

	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "debug", Format: "console", File: path, Output: &buf})
	require.NoError(t, err)

	logger.Warn().Msg("bundle closed early")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"bundle closed early"`)
	assert.Contains(t, buf.String(), "bundle closed early")
}
