package input

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf16"
)

// KEYBDINPUT flags and virtual keys used by the SendInput backend
const (
	keyeventfKeyUp   uint32 = 0x0002
	keyeventfUnicode uint32 = 0x0004
	vkReturn         uint16 = 0x0D
)

// keyInput is the portable form of one KEYBDINPUT event
type keyInput struct {
	Vk    uint16
	Scan  uint16
	Flags uint32
}

// inputSystem submits batches of keyboard events to the OS
type inputSystem interface {
	Open() error
	Close() error
	// Send returns the number of events inserted and, when short, the OS error
	Send(inputs []keyInput) (uint32, error)
}

// SendInput injects characters as Unicode keyboard events via user32!SendInput
type SendInput struct {
	sys     inputSystem
	log     *slog.Logger
	sleep   func(time.Duration)
	started bool
}

func newSendInput(sys inputSystem, logger *slog.Logger) *SendInput {
	return &SendInput{
		sys:   sys,
		log:   logger.With("component", "sendinput"),
		sleep: sleep,
	}
}

// Start resolves the SendInput entry point
func (b *SendInput) Start() error {
	if err := b.sys.Open(); err != nil {
		return newBackendError("SendInput start", err)
	}
	b.started = true
	b.log.Debug("SendInput: backend started")
	return nil
}

// Stop releases the backend; calling it twice is harmless
func (b *SendInput) Stop() error {
	if !b.started {
		return nil
	}
	b.started = false
	b.log.Debug("SendInput: backend stopped")
	return b.sys.Close()
}

// TypeCharacter sends a key-down/key-up pair per UTF-16 unit of r in one batch
func (b *SendInput) TypeCharacter(r rune, delay time.Duration) error {
	if r == '\n' {
		return b.PressReturn(delay)
	}
	if err := b.send(unicodeInputs(r)); err != nil {
		return err
	}
	b.sleep(delay)
	return nil
}

// PressReturn sends VK_RETURN down and up
func (b *SendInput) PressReturn(delay time.Duration) error {
	if err := b.send(returnInputs()); err != nil {
		return err
	}
	b.sleep(delay)
	return nil
}

// Flush is a no-op; every batch is submitted synchronously
func (b *SendInput) Flush() error { return nil }

func (b *SendInput) send(inputs []keyInput) error {
	if !b.started {
		return newBackendError("SendInput", ErrNotStarted)
	}
	sent, err := b.sys.Send(inputs)
	if int(sent) != len(inputs) {
		if err == nil {
			err = fmt.Errorf("inserted %d of %d events", sent, len(inputs))
		}
		be := newBackendError("SendInput", err)
		b.log.Error("SendInput: short send", "sent", sent, "submitted", len(inputs), "code", be.Code)
		return be
	}
	return nil
}

func unicodeInputs(r rune) []keyInput {
	units := utf16.Encode([]rune{r})
	inputs := make([]keyInput, 0, 2*len(units))
	for _, u := range units {
		inputs = append(inputs,
			keyInput{Scan: u, Flags: keyeventfUnicode},
			keyInput{Scan: u, Flags: keyeventfUnicode | keyeventfKeyUp},
		)
	}
	return inputs
}

func returnInputs() []keyInput {
	return []keyInput{
		{Vk: vkReturn},
		{Vk: vkReturn, Flags: keyeventfKeyUp},
	}
}
