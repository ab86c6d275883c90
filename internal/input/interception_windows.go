//go:build windows

package input

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// interception.dll ships with the driver installer and is looked up on the
// standard DLL search path
var (
	interceptionDLL    = windows.NewLazyDLL("interception.dll")
	procCreateContext  = interceptionDLL.NewProc("interception_create_context")
	procDestroyContext = interceptionDLL.NewProc("interception_destroy_context")
	procIsKeyboard     = interceptionDLL.NewProc("interception_is_keyboard")
	procSend           = interceptionDLL.NewProc("interception_send")
)

// rawStroke pads a key stroke to sizeof(InterceptionStroke), the stride
// interception_send walks its buffer with
type rawStroke struct {
	keyStroke
	_ [12]byte
}

type dllDriver struct {
	ctx uintptr
}

func newInterceptionDriver() driver { return &dllDriver{} }

func (d *dllDriver) Open() error {
	if err := interceptionDLL.Load(); err != nil {
		return fmt.Errorf("loading interception.dll: %w", err)
	}
	ctx, _, _ := procCreateContext.Call()
	if ctx == 0 {
		return errors.New("interception_create_context returned null (is the driver installed?)")
	}
	d.ctx = ctx
	return nil
}

func (d *dllDriver) Close() error {
	if d.ctx == 0 {
		return nil
	}
	procDestroyContext.Call(d.ctx)
	d.ctx = 0
	return nil
}

func (d *dllDriver) IsKeyboard(device int) bool {
	ret, _, _ := procIsKeyboard.Call(uintptr(device))
	return ret != 0
}

func (d *dllDriver) Send(device int, strokes []keyStroke) (int, error) {
	if d.ctx == 0 {
		return 0, ErrNotStarted
	}
	if len(strokes) == 0 {
		return 0, nil
	}
	buf := make([]rawStroke, len(strokes))
	for i, s := range strokes {
		buf[i].keyStroke = s
	}
	ret, _, err := procSend.Call(
		d.ctx,
		uintptr(device),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if n := int(int32(ret)); n < len(strokes) {
		return n, err
	}
	return len(strokes), nil
}
