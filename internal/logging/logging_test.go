package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"ERROR", LevelError, false},
		{"CRITICAL", LevelError, false},
		{"verbose", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: LevelWarn, Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.Info("hidden")
	l.Component("simulator").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=simulator")
	assert.Empty(t, l.Path())
}

func TestFileCapturesDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	l, err := New(Options{Level: LevelInfo, File: true, Dir: dir, Console: &buf})
	require.NoError(t, err)

	l.Debug("debug detail")
	l.Info("run started", "token", "s3cret")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.Equal(t, filepath.Join(dir, FileName), l.Path())
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), "debug detail")
	assert.Contains(t, string(data), "token=[REDACTED]")
	assert.NotContains(t, string(data), "s3cret")
	assert.NotContains(t, buf.String(), "debug detail")
	assert.Contains(t, buf.String(), "run started")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), LevelError))
	assert.NoError(t, l.Close())
}
