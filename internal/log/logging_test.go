package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestConsoleHandlerPlain(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{w: &buf, level: LevelTrace}
	logger := slog.New(h).With("slot", 2)
	logger.Log(context.Background(), LevelTrace, "frame sent", "bytes", 212)

	line := buf.String()
	assert.Contains(t, line, "TRACE frame sent slot=2 bytes=212")
	assert.NotContains(t, line, "\033[")
}

func TestLevelFilterSplitsStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: &consoleHandler{w: &out, level: slog.LevelInfo}},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: &consoleHandler{w: &errOut, level: slog.LevelError}},
	}})
	logger.Info("hello")
	logger.Debug("hidden")
	logger.Error("boom")

	assert.Contains(t, out.String(), "hello")
	assert.NotContains(t, out.String(), "hidden")
	assert.NotContains(t, out.String(), "boom")
	assert.Equal(t, 1, strings.Count(errOut.String(), "\n"))
	assert.Contains(t, errOut.String(), "boom")
}

func TestRawLogger(t *testing.T) {
	NewRaw(nil).Log("127.0.0.1:8000", []byte{1, 2})

	var buf bytes.Buffer
	NewRaw(&buf).Log("127.0.0.1:8000", []byte{0x76, 0x32})
	assert.Contains(t, buf.String(), "-> 127.0.0.1:8000 [2] 7632")
}
