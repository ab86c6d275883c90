//go:build windows

package input

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const inputKeyboard = 1

type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT is sized to the MOUSEINPUT arm of the union
type INPUT struct {
	Type uint32
	Ki   KEYBDINPUT
	_    [8]byte
}

type win32Input struct{}

func newInputSystem() inputSystem { return win32Input{} }

func (win32Input) Open() error { return procSendInput.Find() }

func (win32Input) Close() error { return nil }

func (win32Input) Send(inputs []keyInput) (uint32, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	batch := make([]INPUT, len(inputs))
	for i, in := range inputs {
		batch[i].Type = inputKeyboard
		batch[i].Ki = KEYBDINPUT{
			WVk:     in.Vk,
			WScan:   in.Scan,
			DwFlags: in.Flags,
		}
	}

	ret, _, err := procSendInput.Call(
		uintptr(len(batch)),
		uintptr(unsafe.Pointer(&batch[0])),
		unsafe.Sizeof(batch[0]),
	)
	if uint32(ret) != uint32(len(batch)) {
		return uint32(ret), err
	}
	return uint32(ret), nil
}
