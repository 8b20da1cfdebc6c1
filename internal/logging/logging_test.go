package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "production", &buf)
	require.NoError(t, err)

	logger.Info("analysis complete", zap.Int("ingredients", 4))
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysis complete", entry["msg"])
	assert.Equal(t, "fridgechef", entry["service"])
	assert.EqualValues(t, 4, entry["ingredients"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestDevelopmentLoggerIsConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", "development", &buf)
	require.NoError(t, err)

	logger.Debug("model reply")
	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "model reply")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...(truncated)", Truncate("abcdef", 3))
}
