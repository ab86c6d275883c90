//go:build !windows

package tray

// Run blocks until Quit; there is no tray outside Windows
func (t *Tray) Run() {
	t.log.Warn("Tray: system tray not supported on this platform")
	t.markReady()
	<-t.quitCh
}

// Quit ends Run
func (t *Tray) Quit() {
	t.markQuit()
}
