//go:build !windows

package hotkey

func (m *Manager) startPlatform() (func(), error) {
	m.log.Warn("Hotkey Engine: Global hooks not supported on this platform.")
	return nil, nil
}
