//go:build !windows

package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartUnsupportedPlatform(t *testing.T) {
	for _, kind := range Kinds {
		b, err := New(kind, discardLogger())
		assert.NoError(t, err)
		assert.ErrorIs(t, b.Start(), ErrUnsupportedPlatform)
		assert.NoError(t, b.Stop())
	}
}
