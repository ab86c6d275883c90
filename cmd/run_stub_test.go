//go:build !windows

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysim/internal/input"
)

func TestRunReportsUnsupportedPlatform(t *testing.T) {
	out, err := execute(t, "run", "--text", "hi", "--countdown", "1", "--delay", "0")
	require.ErrorIs(t, err, input.ErrUnsupportedPlatform)

	assert.Equal(t, "Starting in 1...\nStatus: running\nStatus: error\nFinished: error (0/2 characters)\n", out)
}
