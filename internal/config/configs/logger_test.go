package configs

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Logger{Level: in}.SlogLevel(), in)
	}
}

func TestLoggerHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	slog.New(Logger{Format: "JSON"}.Handler(&buf)).Info("hello", "k", "v")
	assert.JSONEq(t, `{"level":"INFO","msg":"hello","k":"v","time":"x"}`,
		replaceTime(t, buf.Bytes()))

	buf.Reset()
	slog.New(Logger{Format: "yaml", Level: "warn"}.Handler(&buf)).Info("dropped")
	assert.Empty(t, buf.String())
}

func replaceTime(t *testing.T, b []byte) string {
	t.Helper()
	i := bytes.Index(b, []byte(`"time":"`))
	if i < 0 {
		t.Fatalf("no time in %s", b)
	}
	j := bytes.IndexByte(b[i+8:], '"')
	return string(b[:i+8]) + "x" + string(b[i+8+j:])
}
