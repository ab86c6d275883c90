//go:build !windows

// Package osutils wraps the few host queries keysim needs.
package osutils

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}

// KeepAwake is a no-op outside Windows
func KeepAwake() (release func()) {
	return func() {}
}
