package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "[ERROR]")
}

func TestLoggerUnknownLevelLogsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "verbose")

	l.Debug("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	l, err := NewLogger(path, "info", false)
	require.NoError(t, err)
	defer l.Close()

	l.Info("started")
	assert.FileExists(t, path)
}

func TestStatusSortsKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.Status("SUMMARY", map[string]string{"b": "2", "a": "1"})
	out := buf.String()
	assert.Less(t, bytes.Index([]byte(out), []byte("a ")), bytes.Index([]byte(out), []byte("b ")))
}

func TestGlobalFunctionsWithoutLoggerAreNoop(t *testing.T) {
	SetGlobal(nil)
	assert.NotPanics(t, func() {
		Info("x")
		Warn("x")
		Error("x")
		Debug("x")
		Status("x", nil)
	})
}
