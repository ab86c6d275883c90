package input

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Interception key stroke states
const (
	keyDown uint16 = 0x00
	keyUp   uint16 = 0x01
	keyE0   uint16 = 0x02
)

// maxDevices is the number of device slots exposed by the driver.
// Slots are numbered from 1; keyboards occupy the lower half.
const maxDevices = 20

// keyStroke mirrors InterceptionKeyStroke
type keyStroke struct {
	Code        uint16
	State       uint16
	Information uint32
}

// driver is a handle to the Interception kernel driver
type driver interface {
	Open() error
	Close() error
	IsKeyboard(device int) bool
	// Send returns the number of strokes accepted
	Send(device int, strokes []keyStroke) (int, error)
}

// Interception injects scan codes through the Interception driver, bound
// to the first keyboard device found at Start
type Interception struct {
	drv    driver
	log    *slog.Logger
	sleep  func(time.Duration)
	device int
	open   bool
}

func newInterception(drv driver, logger *slog.Logger) *Interception {
	return &Interception{
		drv:   drv,
		log:   logger.With("component", "interception"),
		sleep: sleep,
	}
}

// Device returns the bound keyboard slot, or 0 before Start
func (b *Interception) Device() int { return b.device }

// Start creates the driver context and binds the first keyboard
func (b *Interception) Start() error {
	if err := b.drv.Open(); err != nil {
		return newBackendError("interception create context", err)
	}

	for dev := 1; dev <= maxDevices; dev++ {
		if b.drv.IsKeyboard(dev) {
			b.device = dev
			b.open = true
			b.log.Info("Interception: bound keyboard device", "device", dev)
			return nil
		}
	}

	if err := b.drv.Close(); err != nil {
		b.log.Warn("Interception: closing context after failed start", "error", err)
	}
	return newBackendError("interception find keyboard", ErrNoKeyboard)
}

// Stop destroys the driver context
func (b *Interception) Stop() error {
	if !b.open {
		return nil
	}
	b.open = false
	b.device = 0
	return b.drv.Close()
}

// TypeCharacter presses the key for r with its modifiers.
// Characters outside the key map are skipped with a warning.
func (b *Interception) TypeCharacter(r rune, delay time.Duration) error {
	if r == '\n' {
		return b.PressReturn(delay)
	}

	key, err := KeyInfo(r)
	if errors.Is(err, ErrUnknownKey) {
		b.log.Warn("Interception: skipping unknown key", "char", string(r))
		return nil
	}
	if err := b.press(key, delay); err != nil {
		return err
	}
	b.sleep(delay)
	return nil
}

// PressReturn presses and releases Enter
func (b *Interception) PressReturn(delay time.Duration) error {
	return b.press(enterKey, delay)
}

// Flush is a no-op
func (b *Interception) Flush() error { return nil }

// press sends modifier downs, the key down/up pair, then modifier ups in reverse
func (b *Interception) press(key Key, delay time.Duration) error {
	mods := key.modifiers()

	for _, mod := range mods {
		if err := b.send(mod, keyDown); err != nil {
			return err
		}
		b.sleep(delay / 2)
	}

	if err := b.send(key, keyDown); err != nil {
		return err
	}
	b.sleep(delay)
	if err := b.send(key, keyUp); err != nil {
		return err
	}

	for i := len(mods) - 1; i >= 0; i-- {
		b.sleep(delay / 2)
		if err := b.send(mods[i], keyUp); err != nil {
			return err
		}
	}
	return nil
}

func (b *Interception) send(key Key, state uint16) error {
	if !b.open {
		return newBackendError("interception send", ErrNotStarted)
	}
	if key.Extended {
		state |= keyE0
	}
	n, err := b.drv.Send(b.device, []keyStroke{{Code: key.ScanCode, State: state}})
	if n < 1 {
		if err == nil {
			err = fmt.Errorf("driver accepted no strokes for scan code 0x%02X", key.ScanCode)
		}
		return newBackendError("interception send", err)
	}
	return nil
}
