package osutils

import "testing"

func TestKeepAwakeReleaseIsIdempotent(t *testing.T) {
	release := KeepAwake()
	release()
	release()
}
