//go:build windows

package tray

import (
	"github.com/getlantern/systray"
)

// Run starts the tray event loop (blocks)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, t.markQuit)
}

// Quit removes the tray icon and ends Run
func (t *Tray) Quit() {
	systray.Quit()
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle("keysim")
	systray.SetIcon(getIcon())

	pause := systray.AddMenuItem("Pause", "Pause typing")
	resume := systray.AddMenuItem("Resume", "Resume typing")
	systray.AddSeparator()
	stop := systray.AddMenuItem("Stop", "Stop typing")

	render := func() {
		systray.SetTooltip(t.Tooltip())
		canPause, canResume, canStop := menuState(t.currentState())
		setEnabled(pause, canPause)
		setEnabled(resume, canResume)
		setEnabled(stop, canStop)
	}

	t.mu.Lock()
	t.refresh = render
	t.mu.Unlock()
	render()
	t.markReady()

	// Handle clicks in goroutine
	go func() {
		for {
			select {
			case <-pause.ClickedCh:
				t.log.Info("Tray: pause clicked")
				call(t.ctrl.Pause)
			case <-resume.ClickedCh:
				t.log.Info("Tray: resume clicked")
				call(t.ctrl.Resume)
			case <-stop.ClickedCh:
				t.log.Info("Tray: stop clicked")
				call(t.ctrl.Stop)
			case <-t.quitCh:
				return
			}
		}
	}()
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

// getIcon returns a 16x16 32-bit ICO with a solid key-cap square
func getIcon() []byte {
	const (
		side      = 16
		header    = 6 + 16
		dibHeader = 40
		pixels    = side * side * 4
		mask      = side * 4
	)
	icon := make([]byte, header+dibHeader+pixels+mask)

	// ICO Header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon Directory: 16x16, 32bpp, image size, offset 22
	copy(icon[6:22], []byte{
		side, side, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x68, 0x04, 0x00, 0x00,
		header, 0x00, 0x00, 0x00,
	})
	// DIB Header
	copy(icon[22:62], []byte{
		dibHeader, 0x00, 0x00, 0x00,
		side, 0x00, 0x00, 0x00,
		side * 2, 0x00, 0x00, 0x00, // XOR and AND masks
		0x01, 0x00,
		0x20, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x04, 0x00, 0x00,
	})

	// BGRA rows, bottom-up; a grey border around a dark face
	px := icon[header+dibHeader:]
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			i := (y*side + x) * 4
			switch {
			case x == 0 || y == 0 || x == side-1 || y == side-1:
				continue
			case x == 1 || y == 1 || x == side-2 || y == side-2:
				px[i], px[i+1], px[i+2] = 0xC0, 0xC0, 0xC0
			default:
				px[i], px[i+1], px[i+2] = 0x40, 0x40, 0x40
			}
			px[i+3] = 0xFF
		}
	}
	return icon
}
