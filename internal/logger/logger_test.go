package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{"logs when debug env is set", "1", true},
		{"logs when debug env is any value", "true", true},
		{"silent when debug env is empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.envValue)

			l := NewEnvLogger("[test]")
			l.Debug("sample %s", "cpu")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] DEBUG: sample cpu")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	buf := captureLog(t)

	l := NewEnvLogger("[sampler]")
	l.Info("dispatched %d jobs", 6)
	l.Warn("gpu unavailable")
	l.Error("save failed")

	out := buf.String()
	assert.Contains(t, out, "[sampler] dispatched 6 jobs")
	assert.Contains(t, out, "[sampler] WARN: gpu unavailable")
	assert.Contains(t, out, "[sampler] ERROR: save failed")
}

func TestNoopLogger(t *testing.T) {
	buf := captureLog(t)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	entries := l.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, entries[0])
	assert.Equal(t, LogMessage{Level: "info", Message: "info msg"}, entries[1])
	assert.Equal(t, LogMessage{Level: "warn", Message: "warn msg"}, entries[2])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, entries[3])

	assert.True(t, l.HasLevel("warn"))
	assert.Equal(t, 1, l.Count("error"))

	l.Clear()
	assert.Empty(t, l.Entries())
	assert.False(t, l.HasLevel("warn"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Info("message %d", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, l.Count("info"))
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)
	assert.Equal(t, buf, Default())

	assert.Equal(t, buf, OrDefault(nil))
	other := Noop()
	assert.Equal(t, other, OrDefault(other))
}
