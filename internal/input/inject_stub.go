//go:build !windows

package input

// Stub implementation for non-Windows platforms

type unsupportedInput struct{}

func newInputSystem() inputSystem { return unsupportedInput{} }

func (unsupportedInput) Open() error { return ErrUnsupportedPlatform }
func (unsupportedInput) Close() error { return nil }
func (unsupportedInput) Send([]keyInput) (uint32, error) {
	return 0, ErrUnsupportedPlatform
}

type unsupportedDriver struct{}

func newInterceptionDriver() driver { return unsupportedDriver{} }

func (unsupportedDriver) Open() error { return ErrUnsupportedPlatform }
func (unsupportedDriver) Close() error { return nil }
func (unsupportedDriver) IsKeyboard(int) bool { return false }
func (unsupportedDriver) Send(int, []keyStroke) (int, error) {
	return 0, ErrUnsupportedPlatform
}
