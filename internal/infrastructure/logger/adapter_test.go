package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core)

	turn := l.WithFields(map[string]any{"turn_id": "t-1", "iteration": 2})
	turn.WithField("tool", "filter_listings").Info("tool executed", "is_error", false)
	l.Debug("plain")

	entries := logs.All()
	require.Len(t, entries, 2)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "tool executed", entries[0].Message)
	assert.Equal(t, "t-1", ctx["turn_id"])
	assert.EqualValues(t, 2, ctx["iteration"])
	assert.Equal(t, "filter_listings", ctx["tool"])
	assert.Equal(t, false, ctx["is_error"])

	assert.Empty(t, entries[1].ContextMap(), "parent logger keeps no derived fields")
}

func TestLoggerAdapter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewFromCore(core)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e", "error", "boom")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}

func TestNewLoggerAdapter_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLoggerAdapter(Config{Dir: dir, Name: "chat session/1", Level: "debug"})
	require.NoError(t, err)

	l.WithField("listing_id", "101").Debug("detail fetched")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "*_chat_session_1.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(files[0])
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "detail fetched", entry["message"])
	assert.Equal(t, "101", entry["listing_id"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "assistant", sanitize(""))
	assert.Equal(t, "a_b-c", sanitize("a b-c"))
	assert.Len(t, sanitize(string(make([]byte, 100))), 60)
}
