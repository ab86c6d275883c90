//go:build windows

// Package osutils wraps the few host queries keysim needs.
package osutils

import (
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sys/windows"
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

const (
	ES_SYSTEM_REQUIRED  = 0x00000001
	ES_DISPLAY_REQUIRED = 0x00000002
	ES_CONTINUOUS       = 0x80000000
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err = windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return member
}

// KeepAwake stops the display from sleeping or locking until release is
// called. The execution state belongs to a thread, so one is pinned for it.
func KeepAwake() (release func()) {
	done := make(chan struct{})
	set := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		ret, _, err := procSetThreadExecutionState.Call(ES_CONTINUOUS | ES_SYSTEM_REQUIRED | ES_DISPLAY_REQUIRED)
		if ret == 0 {
			slog.Warn("KeepAwake: SetThreadExecutionState failed", "error", err)
		}
		close(set)

		<-done
		procSetThreadExecutionState.Call(ES_CONTINUOUS)
	}()

	<-set
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
